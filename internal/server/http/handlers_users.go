package httpserver

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/placeshare/placeshare/internal/model"
	"github.com/placeshare/placeshare/internal/service"
)

type userJSON struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Email  string   `json:"email"`
	Image  string   `json:"image"`
	Places []string `json:"places"`
}

func (s *Server) toUserJSON(u *model.User) userJSON {
	places := make([]string, 0, len(u.PlaceIDs))
	for _, id := range u.PlaceIDs {
		places = append(places, id.String())
	}
	return userJSON{
		ID:     u.ID.String(),
		Name:   u.Name,
		Email:  u.Email,
		Image:  s.blobs.URL(u.ImageKey),
		Places: places,
	}
}

type sessionJSON struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Token  string `json:"token"`
}

func toSessionJSON(sess service.Session) sessionJSON {
	return sessionJSON{UserID: sess.UserID.String(), Email: sess.Email, Token: sess.Token}
}

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.users.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]userJSON, 0, len(users))
	for i := range users {
		out = append(out, s.toUserJSON(&users[i]))
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": out})
}

func (s *Server) signup(w http.ResponseWriter, r *http.Request) {
	image, contentType := imageFromForm(r)
	sess, err := s.users.Signup(r.Context(), service.SignupInput{
		Name:     r.FormValue("name"),
		Email:    r.FormValue("email"),
		Password: r.FormValue("password"),
		Image:    image,
		ImageCT:  contentType,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toSessionJSON(sess))
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Message: "invalid inputs passed, please check your data"})
		return
	}
	sess, err := s.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionJSON(sess))
}

// imageFromForm reads the uploaded "image" part of a multipart request.
// A missing or unreadable part comes back empty; the service layer treats an
// absent image as a validation failure.
func imageFromForm(r *http.Request) ([]byte, string) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return nil, ""
	}
	file, hdr, err := r.FormFile("image")
	if err != nil {
		return nil, ""
	}
	defer file.Close()
	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		return nil, ""
	}
	return data, hdr.Header.Get("Content-Type")
}
