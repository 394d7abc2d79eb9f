package httpserver

import (
	"encoding/json"
	"net/http"

	"github.com/gofrs/uuid/v5"

	"github.com/placeshare/placeshare/internal/errs"
	"github.com/placeshare/placeshare/internal/model"
	"github.com/placeshare/placeshare/internal/service"
)

type locationJSON struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type placeJSON struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Address     string       `json:"address"`
	Location    locationJSON `json:"location"`
	Image       string       `json:"image"`
	Creator     string       `json:"creator"`
}

func (s *Server) toPlaceJSON(p *model.Place) placeJSON {
	return placeJSON{
		ID:          p.ID.String(),
		Title:       p.Title,
		Description: p.Description,
		Address:     p.Address,
		Location:    locationJSON{Lat: p.Location.Lat, Lng: p.Location.Lng},
		Image:       s.blobs.URL(p.ImageKey),
		Creator:     p.OwnerID.String(),
	}
}

// pathUUID parses a path value as a UUID; a malformed value behaves like a
// missing record.
func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.FromString(r.PathValue(name))
	if err != nil {
		return uuid.Nil, errs.ErrNotFound
	}
	return id, nil
}

func (s *Server) getPlace(w http.ResponseWriter, r *http.Request) {
	placeID, err := pathUUID(r, "pid")
	if err != nil {
		writeError(w, err)
		return
	}
	p, err := s.places.Get(r.Context(), placeID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"place": s.toPlaceJSON(p)})
}

func (s *Server) listPlacesByUser(w http.ResponseWriter, r *http.Request) {
	userID, err := pathUUID(r, "uid")
	if err != nil {
		writeError(w, err)
		return
	}
	places, err := s.places.ListByOwner(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]placeJSON, 0, len(places))
	for i := range places {
		out = append(out, s.toPlaceJSON(&places[i]))
	}
	writeJSON(w, http.StatusOK, map[string]any{"places": out})
}

func (s *Server) createPlace(w http.ResponseWriter, r *http.Request) {
	callerID, ok := UserIDFromCtx(r.Context())
	if !ok {
		writeError(w, errs.ErrUnauthorized)
		return
	}
	image, contentType := imageFromForm(r)
	p, err := s.places.Create(r.Context(), callerID, service.CreatePlaceInput{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Address:     r.FormValue("address"),
		Image:       image,
		ImageCT:     contentType,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"place": s.toPlaceJSON(p)})
}

type updatePlaceRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (s *Server) updatePlace(w http.ResponseWriter, r *http.Request) {
	callerID, ok := UserIDFromCtx(r.Context())
	if !ok {
		writeError(w, errs.ErrUnauthorized)
		return
	}
	placeID, err := pathUUID(r, "pid")
	if err != nil {
		writeError(w, err)
		return
	}
	var req updatePlaceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errs.ErrValidation)
		return
	}
	p, err := s.places.Update(r.Context(), callerID, placeID, service.UpdatePlaceInput{
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"place": s.toPlaceJSON(p)})
}

func (s *Server) deletePlace(w http.ResponseWriter, r *http.Request) {
	callerID, ok := UserIDFromCtx(r.Context())
	if !ok {
		writeError(w, errs.ErrUnauthorized)
		return
	}
	placeID, err := pathUUID(r, "pid")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.places.Delete(r.Context(), callerID, placeID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "place deleted"})
}
