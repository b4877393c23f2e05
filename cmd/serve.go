package cmd

import (
	"bytes"
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/jsphweid/midi2text/config"
	"github.com/jsphweid/midi2text/convert"
	"github.com/jsphweid/midi2text/match"
	"github.com/jsphweid/midi2text/midi"
	"github.com/rs/cors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves conversions over HTTP",
	Long:  `Serves POST /convert: the request body is a midi file, the response is the note text.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve()
	},
}

type server struct {
	converter *convert.Converter
	maxBytes  int64
	log       *zap.Logger
}

// NewRouter builds the HTTP handler, CORS included.
func NewRouter(c *convert.Converter, sc config.ServeConfig, l *zap.Logger) http.Handler {
	s := &server{converter: c, maxBytes: sc.MaxBodyBytes, log: l}

	router := mux.NewRouter().StrictSlash(true)
	router.HandleFunc("/convert", s.handleConvert).Methods("POST")
	router.HandleFunc("/health", handleHealth).Methods("GET")

	return cors.New(cors.Options{
		AllowedOrigins: sc.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
	}).Handler(router)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, "ok\n")
}

func (s *server) handleConvert(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBytes))
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			http.Error(w, "midi file too large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "could not read request body", http.StatusBadRequest)
		return
	}

	var out bytes.Buffer
	stats, err := s.converter.Convert(bytes.NewReader(body), &out)
	if err != nil {
		s.log.Warn("conversion failed", zap.Error(err))
		var unmatchedErr *match.UnmatchedError
		switch {
		case errors.Is(err, midi.ErrDecode):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.As(err, &unmatchedErr):
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		default:
			http.Error(w, "conversion failed", http.StatusInternalServerError)
		}
		return
	}
	s.log.Info("converted upload", zap.Int("bytes", len(body)), zap.Int("tones", stats.Tones))

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write(out.Bytes())
}

func serve() error {
	defer log.Sync()
	log.Info("listening", zap.String("addr", cfg.Serve.Addr))
	return http.ListenAndServe(cfg.Serve.Addr, NewRouter(newConverter(), cfg.Serve, log))
}
