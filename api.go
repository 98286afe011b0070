package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/milos-ethernal/go-solana-movie-review/address"
	"github.com/milos-ethernal/go-solana-movie-review/components/submission"
	"github.com/milos-ethernal/go-solana-movie-review/wallet"
	"go.uber.org/zap"
)

type SubmitReviewRequest struct {
	Title       string `json:"title"`
	Rating      uint8  `json:"rating"`
	Description string `json:"description"`
}

type SubmitReviewResponse struct {
	Signature string `json:"signature"`
}

type ReviewAddressResponse struct {
	Address string `json:"address"`
	Bump    uint8  `json:"bump"`
}

type ReviewResponse struct {
	Title       string `json:"title"`
	Rating      uint8  `json:"rating"`
	Description string `json:"description"`
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

type apiServer struct {
	client *submission.Client
	wallet wallet.Wallet
	logger *zap.Logger
}

func newRouter(client *submission.Client, w wallet.Wallet, logger *zap.Logger) http.Handler {
	s := &apiServer{
		client: client,
		wallet: w,
		logger: logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogging)

	r.Post("/reviews", s.submitReview)
	r.Get("/reviews/{submitter}/{title}/address", s.reviewAddress)
	r.Get("/reviews/{submitter}/{title}", s.getReview)

	return r
}

func (s *apiServer) requestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		s.logger.Info("request",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)))
	})
}

func (s *apiServer) submitReview(w http.ResponseWriter, r *http.Request) {
	var req SubmitReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	form := submission.NewForm(s.client)
	form.SetTitle(req.Title)
	form.SetDescription(req.Description)
	form.SelectRating(req.Rating)

	signature, err := form.Submit(r.Context(), s.wallet)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, SubmitReviewResponse{Signature: signature})
}

func (s *apiServer) reviewAddress(w http.ResponseWriter, r *http.Request) {
	submitter, err := address.NewPublicKey(chi.URLParam(r, "submitter"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	pda, bump, err := s.client.ReviewAddress(submitter, chi.URLParam(r, "title"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ReviewAddressResponse{Address: pda.String(), Bump: bump})
}

func (s *apiServer) getReview(w http.ResponseWriter, r *http.Request) {
	submitter, err := address.NewPublicKey(chi.URLParam(r, "submitter"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	state, err := s.client.FetchReview(r.Context(), submitter, chi.URLParam(r, "title"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ReviewResponse{
		Title:       state.Title,
		Rating:      state.Rating,
		Description: state.Description,
	})
}

func writeError(w http.ResponseWriter, err error) {
	kind := submission.Classify(err)

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, submission.ErrReviewNotFound):
		status = http.StatusNotFound
	case kind == submission.KindInvalidReview:
		status = http.StatusBadRequest
	case kind == submission.KindMissingWallet:
		status = http.StatusUnauthorized
	case kind == submission.KindNetworkFailure:
		status = http.StatusBadGateway
	case kind == submission.KindSubmissionRejected:
		status = http.StatusConflict
	}

	writeJSON(w, status, errorResponse{Error: err.Error(), Kind: kind.String()})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
