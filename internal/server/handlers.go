package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/smokyabdulrahman/masjid-display/internal/board"
	"github.com/smokyabdulrahman/masjid-display/internal/config"
	"github.com/smokyabdulrahman/masjid-display/internal/prayer"
	"github.com/smokyabdulrahman/masjid-display/internal/store"
)

const maxSettingsBody = 64 << 10

type methodResponse struct {
	ID     prayer.Method `json:"id"`
	Name   string        `json:"name"`
	Arabic string        `json:"arabic"`
	Region string        `json:"region"`
}

type timesResponse struct {
	MosqueID      string      `json:"mosqueId"`
	Date          string      `json:"date"`
	GregorianDate string      `json:"gregorianDate"`
	HijriDate     string      `json:"hijriDate"`
	Rows          []board.Row `json:"rows"`
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) methods(c *gin.Context) {
	out := make([]methodResponse, 0, len(prayer.Methods))
	for _, m := range prayer.Methods {
		out = append(out, methodResponse{m.Method, m.Name, m.Arabic, m.Region})
	}
	c.JSON(http.StatusOK, out)
}

// runner resolves the :id runner, writing the error response itself.
func (s *Server) runner(c *gin.Context, id string) (*board.Runner, bool) {
	r, err := s.Runner(c.Request.Context(), id)
	switch {
	case err == nil:
		return r, true
	case errors.Is(err, store.ErrInvalidID):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("mosque %q not found", id)})
	default:
		log.Error().Err(err).Str("mosque", id).Msg("starting mosque")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
	return nil, false
}

func (s *Server) board(c *gin.Context) {
	r, ok := s.runner(c, c.Param("id"))
	if !ok {
		return
	}
	b, ok := r.Latest()
	if !ok {
		var err error
		if b, err = r.Tick(c.Request.Context()); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, b)
}

func (s *Server) times(c *gin.Context) {
	id := c.Param("id")
	r, ok := s.runner(c, id)
	if !ok {
		return
	}
	settings := r.Settings()
	loc, err := settings.TimeZone()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	date := time.Now().In(loc)
	if s.opts.Now != nil {
		date = s.opts.Now().In(loc)
	}
	if raw := c.Query("date"); raw != "" {
		if date, err = time.ParseInLocation("2006-01-02", raw, loc); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
			return
		}
	}

	pt, err := s.opts.Source.Times(c.Request.Context(), settings.Prayer(), date)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, timesResponse{
		MosqueID:      id,
		Date:          date.Format("2006-01-02"),
		GregorianDate: prayer.GetGregorianDate(date),
		HijriDate:     prayer.GetHijriDate(date),
		Rows:          board.Rows(&settings, pt),
	})
}

func (s *Server) settings(c *gin.Context) {
	r, ok := s.runner(c, c.Param("id"))
	if !ok {
		return
	}
	c.JSON(http.StatusOK, r.Settings())
}

// putSettings replaces a mosque's settings; omitted fields take their
// defaults. Unknown mosques are created.
func (s *Server) putSettings(c *gin.Context) {
	id := c.Param("id")
	if err := store.ValidateID(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxSettingsBody))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	settings, err := config.Decode(body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := settings.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := store.Save(c.Request.Context(), s.opts.Store, id, &settings); err != nil {
		log.Error().Err(err).Str("mosque", id).Msg("saving settings")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	s.mu.Lock()
	r, running := s.runners[id]
	if !running {
		_, err = s.startLocked(id, &settings)
	}
	s.mu.Unlock()
	if running {
		err = r.Reload(&settings)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, settings)
}

func (s *Server) dismiss(c *gin.Context) {
	r, ok := s.runner(c, c.Param("id"))
	if !ok {
		return
	}
	r.Dismiss()
	c.JSON(http.StatusAccepted, gin.H{"status": "dismissed"})
}

// qr renders a QR code linking to the mosque's board.
func (s *Server) qr(c *gin.Context) {
	id := c.Param("id")
	if _, ok := s.runner(c, id); !ok {
		return
	}

	base := s.opts.PublicBaseURL
	if base == "" {
		scheme := "http"
		if c.Request.TLS != nil {
			scheme = "https"
		}
		base = scheme + "://" + c.Request.Host
	}
	png, err := qrcode.Encode(base+"/api/v1/mosques/"+id+"/board", qrcode.Medium, 256)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Header("Cache-Control", "public, max-age=86400")
	c.Data(http.StatusOK, "image/png", png)
}

// websocket streams boards for ?mosque=<id>, the default mosque if omitted.
func (s *Server) websocket(c *gin.Context) {
	id := c.DefaultQuery("mosque", store.DefaultID)
	r, ok := s.runner(c, id)
	if !ok {
		return
	}
	var initial *board.Board
	if b, ok := r.Latest(); ok {
		initial = &b
	}
	s.hub.Serve(c.Writer, c.Request, id, initial)
}
