package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/ebogdum/browsefs/browser"
	"github.com/ebogdum/browsefs/connectors"
	"github.com/ebogdum/browsefs/internal/pathutil"
	"github.com/ebogdum/browsefs/metrics"
)

// ResolveResponse is the body returned by the resolve endpoint.
type ResolveResponse struct {
	Kind      string   `json:"kind"`
	SchemeTag string   `json:"scheme_tag,omitempty"`
	RootPath  string   `json:"root_path"`
	Requested []string `json:"requested_segments"`
	FullMatch bool     `json:"full_match"`
	Node      NodeInfo `json:"node"`
}

// V1Resolve handles GET /v1/resolve?path=...&kind=... requests. It parses
// the path, walks the backend tree toward it, and returns the deepest node
// reached together with its loaded children. A partial match is a normal
// 200 response with full_match false.
func V1Resolve(resolver *browser.Resolver, registry *connectors.Registry, walkTimeout time.Duration, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), walkTimeout)
		defer cancel()

		rawPath := r.URL.Query().Get("path")
		if err := pathutil.Validate(rawPath); err != nil {
			SendErrorResponse(w, logger, err, http.StatusBadRequest)
			return
		}

		res, err := resolveQuery(resolver, rawPath, r.URL.Query().Get("kind"))
		if err != nil {
			SendErrorResponse(w, logger, err, http.StatusBadRequest)
			return
		}

		fetcher, ok := registry.FetcherFor(res.Kind)
		if !ok {
			SendErrorResponse(w, logger, connectors.ErrUnresolvedConnector, http.StatusNotFound)
			return
		}

		tree := browser.NewTree(res.Kind, res.RootPath, fetcher, logger)
		walker := browser.NewWalker(logger)
		reached := walker.Descend(ctx, tree.Root(), res.Segments)

		// a fully matched directory still needs its first listing page; the
		// walk only loads the levels it had to search through
		if reached.Kind() == connectors.EntryDir && !reached.Loaded() {
			if err := reached.Open(ctx); err != nil {
				logger.Debug("failed to open resolved node", zap.String("path", reached.Path()), zap.Error(err))
			}
		}

		depth := len(reached.Hierarchy()) - len(tree.Root().Hierarchy())
		fullMatch := depth == len(res.Segments)

		outcome := "partial"
		if fullMatch {
			outcome = "full"
		}
		metrics.WalksTotal.WithLabelValues(string(res.Kind), outcome).Inc()
		metrics.WalkDepthReached.WithLabelValues(string(res.Kind)).Observe(float64(depth))

		logger.Debug("path resolved",
			zap.String("path", rawPath),
			zap.String("kind", string(res.Kind)),
			zap.Bool("full_match", fullMatch),
			zap.String("reached", reached.Path()))

		resp := ResolveResponse{
			Kind:      string(res.Kind),
			SchemeTag: res.SchemeTag,
			RootPath:  res.RootPath,
			Requested: res.Segments,
			FullMatch: fullMatch,
			Node:      nodeInfo(reached),
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			logger.Error("Failed to encode resolve response", zap.Error(err))
		}
	}
}

// resolveQuery applies an explicit kind query parameter as the resolver
// hint and resolves the path.
func resolveQuery(resolver *browser.Resolver, rawPath, kindParam string) (*browser.Resolution, error) {
	var hint connectors.StorageKind
	if kindParam != "" {
		k, ok := connectors.ParseKind(kindParam)
		if !ok {
			return nil, fmt.Errorf("unknown storage kind %q", kindParam)
		}
		hint = k
	}

	return resolver.Resolve(rawPath, hint)
}
