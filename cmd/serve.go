package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/verity-group/claimcheck/internal/model"
	"github.com/verity-group/claimcheck/internal/store"
)

var servePort int

type verifyRequest struct {
	Text     string `json:"text"`
	Language string `json:"language,omitempty"`
	Tier     string `json:"tier,omitempty"`
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the claim verification HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		r := chi.NewRouter()
		r.Use(middleware.RequestID)
		r.Use(middleware.RealIP)
		r.Use(middleware.Recoverer)
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
		}))

		r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		r.Post("/v1/verify", func(w http.ResponseWriter, req *http.Request) {
			var in verifyRequest
			if err := json.NewDecoder(req.Body).Decode(&in); err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
				return
			}
			if in.Text == "" {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "text is required"})
				return
			}
			tier := model.Tier(in.Tier)
			if tier != model.TierPremium {
				tier = model.TierFree
			}

			result, err := env.Pipeline.Verify(req.Context(), in.Text, in.Language, tier)
			if err != nil {
				zap.L().Error("verify request failed", zap.Error(err))
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "verification failed"})
				return
			}
			writeJSON(w, http.StatusOK, result)
		})

		r.Get("/v1/claims/{signature}", func(w http.ResponseWriter, req *http.Request) {
			signature := chi.URLParam(req, "signature")
			v, err := env.Store.GetVerdictBySignature(req.Context(), signature)
			if err != nil {
				zap.L().Error("verdict lookup failed", zap.String("signature", signature), zap.Error(err))
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "lookup failed"})
				return
			}
			if v == nil {
				writeJSON(w, http.StatusNotFound, map[string]string{"error": "no verdict for signature"})
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{
				"claim_signature": signature,
				"verdict":         v,
			})
		})

		r.Get("/v1/claims", func(w http.ResponseWriter, req *http.Request) {
			claims, err := env.Store.ListClaims(req.Context(), store.ClaimFilter{
				Language: req.URL.Query().Get("language"),
				Limit:    50,
			})
			if err != nil {
				zap.L().Error("claim list failed", zap.Error(err))
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "list failed"})
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"claims": claims})
		})

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		}

		ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
		if err != nil {
			return eris.Wrap(err, "server listen")
		}

		zap.L().Info("starting server", zap.Int("port", port))
		return runServer(ctx, srv, ln)
	},
}

// runServer serves until ctx is cancelled, then drains in-flight requests
// before returning.
func runServer(ctx context.Context, srv *http.Server, ln net.Listener) error {
	drained := make(chan struct{})
	go func() {
		<-ctx.Done()
		zap.L().Info("shutting down server")
		// The signal context is already cancelled here; draining needs its
		// own deadline.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			zap.L().Warn("server shutdown", zap.Error(err))
		}
		close(drained)
	}()

	if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
		return eris.Wrap(err, "server serve")
	}
	<-drained
	return nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
