package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/firewatch/internal/common"
	"github.com/dmitrijs2005/firewatch/internal/server/services"
)

const (
	msgInternal           = "Internal server error"
	msgInvalidCredentials = "Invalid credentials"
	msgUploadFailed       = "Failed to upload video"
	msgFileTooLarge       = "File too large"
	msgVideoRequired      = "Video file is required"
)

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

type logoutRequest struct {
	Token string `json:"token"`
}

type predictRequest struct {
	InputData any `json:"inputData"`
}

type predictResponse struct {
	Message string `json:"message"`
	Result  string `json:"result"`
}

// validationMessage returns the client-facing text of a validation error.
func validationMessage(err error) (string, bool) {
	var ve *common.ValidationError
	if errors.As(err, &ve) {
		return ve.Message, true
	}
	return "", false
}

func (s *HTTPServer) handleRoot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("Fire Detection Backend is Running!\n"))
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *HTTPServer) handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeMessage(w, http.StatusNotFound, "Not found")
}

func (s *HTTPServer) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	err := s.users.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		if msg, ok := validationMessage(err); ok {
			s.metrics.recordAuth("signup", "rejected")
			writeMessage(w, http.StatusBadRequest, msg)
			return
		}
		if errors.Is(err, common.ErrorDuplicateEmail) {
			s.metrics.recordAuth("signup", "rejected")
			writeMessage(w, http.StatusBadRequest, "User already exists")
			return
		}
		s.metrics.recordAuth("signup", "error")
		s.logger.Error(r.Context(), "signup failed", "error", err)
		writeMessage(w, http.StatusInternalServerError, msgInternal)
		return
	}

	s.metrics.recordAuth("signup", "success")
	writeMessage(w, http.StatusCreated, "User registered successfully")
}

func (s *HTTPServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	token, err := s.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if msg, ok := validationMessage(err); ok {
			s.metrics.recordAuth("login", "rejected")
			writeMessage(w, http.StatusBadRequest, msg)
			return
		}
		if errors.Is(err, common.ErrorNotFound) || errors.Is(err, common.ErrorInvalidCredentials) {
			s.metrics.recordAuth("login", "rejected")
			writeMessage(w, http.StatusBadRequest, msgInvalidCredentials)
			return
		}
		s.metrics.recordAuth("login", "error")
		s.logger.Error(r.Context(), "login failed", "error", err)
		writeMessage(w, http.StatusInternalServerError, msgInternal)
		return
	}

	s.metrics.recordAuth("login", "success")
	writeJSON(w, http.StatusOK, loginResponse{Message: "Login successful", Token: token})
}

func (s *HTTPServer) handleLogout(w http.ResponseWriter, r *http.Request) {
	var req logoutRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := s.users.Logout(r.Context(), req.Token); err != nil {
		if errors.Is(err, common.ErrorSessionNotFound) {
			s.metrics.recordAuth("logout", "rejected")
			writeMessage(w, http.StatusBadRequest, "Session not found")
			return
		}
		s.metrics.recordAuth("logout", "error")
		s.logger.Error(r.Context(), "logout failed", "error", err)
		writeMessage(w, http.StatusInternalServerError, msgInternal)
		return
	}

	s.metrics.recordAuth("logout", "success")
	writeMessage(w, http.StatusOK, "Logged out successfully")
}

func (s *HTTPServer) handleProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := identityFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, msgNoToken)
		return
	}

	profile, err := s.users.Profile(r.Context(), id.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			writeMessage(w, http.StatusNotFound, "User not found")
			return
		}
		s.logger.Error(r.Context(), "profile failed", "error", err)
		writeMessage(w, http.StatusInternalServerError, msgInternal)
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

func (s *HTTPServer) handlePredict(w http.ResponseWriter, r *http.Request) {
	var req predictRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := s.predictions.Predict(r.Context(), req.InputData)
	if err != nil {
		if msg, ok := validationMessage(err); ok {
			writeMessage(w, http.StatusBadRequest, msg)
			return
		}
		s.logger.Error(r.Context(), "prediction failed", "error", err)
		writeMessage(w, http.StatusInternalServerError, msgInternal)
		return
	}

	writeJSON(w, http.StatusOK, predictResponse{Message: "Prediction successful", Result: result})
}

// handleUploadVideo accepts a multipart form with the file in field "video".
// A bearer token is optional; when it is admitted the video is attributed to
// its holder.
func (s *HTTPServer) handleUploadVideo(w http.ResponseWriter, r *http.Request) {
	if s.maxUploadSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadSize+multipartOverhead)
	}

	file, header, err := r.FormFile("video")
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			writeMessage(w, http.StatusRequestEntityTooLarge, msgFileTooLarge)
			return
		}
		writeMessage(w, http.StatusBadRequest, msgVideoRequired)
		return
	}
	defer file.Close()
	if r.MultipartForm != nil {
		defer func() { _ = r.MultipartForm.RemoveAll() }()
	}

	var ownerID string
	if id, err := s.users.Authenticate(r.Context(), r.Header.Get(common.AuthorizationHeaderName)); err == nil {
		ownerID = id.UserID
	}

	video, err := s.videos.Upload(r.Context(), ownerID, services.VideoUpload{
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	})
	if err != nil {
		if msg, ok := validationMessage(err); ok {
			writeMessage(w, http.StatusBadRequest, msg)
			return
		}
		if errors.Is(err, common.ErrorTooLarge) {
			writeMessage(w, http.StatusRequestEntityTooLarge, msgFileTooLarge)
			return
		}
		s.logger.Error(r.Context(), "video upload failed", "error", err)
		writeMessage(w, http.StatusInternalServerError, msgUploadFailed)
		return
	}

	s.logger.Info(r.Context(), "video uploaded", "id", video.ID, "size", video.SizeBytes, "owner", video.OwnerID)
	writeMessage(w, http.StatusCreated, "Video uploaded successfully!")
}
