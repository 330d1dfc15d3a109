package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/pterm/pterm"

	"github.com/tosih/thermtable/pkg/export"
	"github.com/tosih/thermtable/pkg/models"
	"github.com/tosih/thermtable/pkg/sampler"
)

//go:embed templates/*
var templates embed.FS

var index = template.Must(template.ParseFS(templates, "templates/index.html"))

// CurveFunc returns the dense model curve a table was sampled from
type CurveFunc func(*models.Table) (sampler.Curve, error)

type RowResponse struct {
	ADC        int     `json:"adc"`
	TempCode   int     `json:"temp_code"`
	Celsius    float64 `json:"celsius"`
	Ohms       float64 `json:"ohms"`
	Volts      float64 `json:"volts"`
	Milliwatts float64 `json:"milliwatts"`
	Error      string  `json:"error,omitempty"`
}

type TableResponse struct {
	Index    int           `json:"index"`
	Names    []string      `json:"names"`
	Params   []float64     `json:"params"`
	Model    string        `json:"model,omitempty"`
	Describe string        `json:"describe,omitempty"`
	MaxError float64       `json:"max_error"`
	Rows     []RowResponse `json:"rows,omitempty"`
	Error    string        `json:"error,omitempty"`
}

func (t *TableResponse) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

// NewTableResponse flattens a generated table, turning errors into text
func NewTableResponse(t *models.Table) *TableResponse {
	resp := &TableResponse{
		Index:    t.Index,
		Names:    t.Names,
		Params:   t.Params,
		Model:    t.Model,
		Describe: t.Describe,
		MaxError: t.MaxError,
	}
	if t.Err != nil {
		resp.Error = t.Err.Error()
	}
	for _, row := range t.Rows {
		rr := RowResponse{
			ADC:        row.ADC,
			TempCode:   row.TempCode,
			Celsius:    row.Temp,
			Ohms:       row.Resistance,
			Volts:      row.Voltage,
			Milliwatts: row.Power * 1000,
		}
		if row.Err != nil {
			rr = RowResponse{ADC: row.ADC, Error: row.Err.Error()}
		}
		resp.Rows = append(resp.Rows, rr)
	}
	return resp
}

// ErrResponse is the JSON body of a failed request
type ErrResponse struct {
	HTTPStatusCode int    `json:"-"`
	StatusText     string `json:"status"`
	ErrorText      string `json:"error,omitempty"`
}

func (e *ErrResponse) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.HTTPStatusCode)
	return nil
}

func errNotFound(err error) render.Renderer {
	return &ErrResponse{HTTPStatusCode: http.StatusNotFound, StatusText: "not found", ErrorText: err.Error()}
}

func errBadRequest(err error) render.Renderer {
	return &ErrResponse{HTTPStatusCode: http.StatusBadRequest, StatusText: "bad request", ErrorText: err.Error()}
}

func errInternal(err error) render.Renderer {
	return &ErrResponse{HTTPStatusCode: http.StatusInternalServerError, StatusText: "internal error", ErrorText: err.Error()}
}

// Server publishes the latest table set of a board over HTTP
type Server struct {
	mu      sync.RWMutex
	board   *models.Board
	set     *models.TableSet
	curveOf CurveFunc
	port    int
}

func NewServer(board *models.Board, set *models.TableSet, curveOf CurveFunc, port int) *Server {
	return &Server{
		board:   board,
		set:     set,
		curveOf: curveOf,
		port:    port,
	}
}

// Update replaces the served board and tables, e.g. after a config reload
func (s *Server) Update(board *models.Board, set *models.TableSet, curveOf CurveFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.board = board
	s.set = set
	s.curveOf = curveOf
}

func (s *Server) snapshot() (*models.Board, *models.TableSet) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.board, s.set
}

func (s *Server) curve(t *models.Table) (sampler.Curve, error) {
	s.mu.RLock()
	curveOf := s.curveOf
	s.mu.RUnlock()
	return curveOf(t)
}

// Routes builds the HTTP handler
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleIndex)
	r.Get("/"+models.HeaderFilename, s.handleHeader)
	r.Get("/chart/{index}", s.handleChart)

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Get("/settings", s.handleSettings)
		r.Get("/sensors", s.handleSensors)
		r.Get("/tables", s.handleTables)
		r.Get("/tables/{index}", s.handleTable)
		r.Get("/sensors/{name}/table", s.handleSensorTable)
	})
	return r
}

// Start serves until ctx is cancelled
func (s *Server) Start(ctx context.Context, open bool) error {
	addr := fmt.Sprintf(":%d", s.port)
	url := fmt.Sprintf("http://localhost%s", addr)

	pterm.DefaultHeader.WithFullWidth().
		WithBackgroundStyle(pterm.NewStyle(pterm.BgCyan)).
		WithTextStyle(pterm.NewStyle(pterm.FgBlack)).
		Println("Thermistor Table Viewer Started")

	pterm.Info.Printf("Serving web interface at %s\n", url)
	pterm.Info.Println("Press Ctrl+C to stop the server")
	pterm.Println()

	if open {
		openBrowser(url)
	}

	server := &http.Server{
		Addr:         addr,
		Handler:      s.Routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- server.ListenAndServe() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdown); err != nil {
			return err
		}
		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

type indexTable struct {
	Index    int
	Names    string
	Model    string
	MaxError float64
	Error    string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	board, set := s.snapshot()

	view := struct {
		Source   string
		NumTemps int
		MaxADC   int
		Tables   []indexTable
	}{
		Source:   board.Source,
		NumTemps: set.Settings.NumTemps,
		MaxADC:   set.Settings.MaxADC,
	}
	for _, t := range set.Tables {
		row := indexTable{Index: t.Index, Names: strings.Join(t.Names, ", "), Model: t.Model, MaxError: t.MaxError}
		if t.Err != nil {
			row.Error = t.Err.Error()
		}
		view.Tables = append(view.Tables, row)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := index.Execute(w, view); err != nil {
		http.Error(w, "Template error", http.StatusInternalServerError)
	}
}

func (s *Server) handleHeader(w http.ResponseWriter, r *http.Request) {
	_, set := s.snapshot()
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write(export.RenderHeader(set))
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	board, _ := s.snapshot()
	render.JSON(w, r, board.Settings)
}

func (s *Server) handleSensors(w http.ResponseWriter, r *http.Request) {
	board, _ := s.snapshot()
	sensors := board.Sensors
	if sensors == nil {
		sensors = []models.Sensor{}
	}
	render.JSON(w, r, sensors)
}

func (s *Server) handleTables(w http.ResponseWriter, r *http.Request) {
	_, set := s.snapshot()

	list := []render.Renderer{}
	for _, t := range set.Tables {
		list = append(list, NewTableResponse(t))
	}
	render.RenderList(w, r, list)
}

func (s *Server) handleTable(w http.ResponseWriter, r *http.Request) {
	t, err := s.tableAt(chi.URLParam(r, "index"))
	if err != nil {
		render.Render(w, r, err)
		return
	}
	render.Render(w, r, NewTableResponse(t))
}

func (s *Server) handleSensorTable(w http.ResponseWriter, r *http.Request) {
	_, set := s.snapshot()
	name := chi.URLParam(r, "name")

	t, ok := set.Lookup(name)
	if !ok {
		render.Render(w, r, errNotFound(fmt.Errorf("no table for sensor %q", name)))
		return
	}
	render.Render(w, r, NewTableResponse(t))
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	t, errResp := s.tableAt(chi.URLParam(r, "index"))
	if errResp != nil {
		render.Render(w, r, errResp)
		return
	}

	curve, err := s.curve(t)
	if err != nil {
		render.Render(w, r, errInternal(err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := export.WriteChart(w, t, curve); err != nil {
		http.Error(w, "Chart error", http.StatusInternalServerError)
	}
}

// tableAt resolves a table index path parameter to a generated table
func (s *Server) tableAt(param string) (*models.Table, render.Renderer) {
	_, set := s.snapshot()

	idx, err := strconv.Atoi(param)
	if err != nil {
		return nil, errBadRequest(fmt.Errorf("invalid table index %q", param))
	}
	for _, t := range set.Valid() {
		if t.Index == idx {
			return t, nil
		}
	}
	return nil, errNotFound(fmt.Errorf("no table with index %d", idx))
}
