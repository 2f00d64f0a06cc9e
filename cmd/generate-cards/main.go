package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"

	"github.com/Lllllllleong/studycardflow/internal/models"
	"github.com/Lllllllleong/studycardflow/internal/services"
)

var (
	cardGeneratorInstance *services.CardGeneratorFunction
	once                  sync.Once
	initErr               error
)

func init() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	// "HandleGenerateCards" is the entry point name we'll see in GCP.
	functions.HTTP("HandleGenerateCards", handleGenerateCards)
}

// main is required by the Go Functions Framework.
func main() {}

// handleGenerateCards is the HTTP handler used by workflows.
func handleGenerateCards(w http.ResponseWriter, r *http.Request) {
	once.Do(func() {
		cardGeneratorInstance, initErr = services.NewCardGenerator(context.Background())
	})
	if initErr != nil {
		slog.Error("CRITICAL: Card generator initialization failed", "error", initErr)
		http.Error(w, "Internal Server Error: failed to initialize service", http.StatusInternalServerError)
		return
	}

	var req models.GenerateCardsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Could not decode request body", "error", err)
		http.Error(w, "Bad Request: could not parse JSON", http.StatusBadRequest)
		return
	}
	if req.GCSUri == "" {
		http.Error(w, "Bad Request: gcsUri is required", http.StatusBadRequest)
		return
	}

	res, err := cardGeneratorInstance.Generate(r.Context(), &req)
	if err != nil {
		// The specific error is already logged inside Generate.
		if services.IsClientError(err) {
			http.Error(w, "Unprocessable Entity: "+err.Error(), http.StatusUnprocessableEntity)
			return
		}
		http.Error(w, "Internal Server Error: processing failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(res); err != nil {
		slog.Error("Failed to write response", "error", err)
		http.Error(w, "Internal Server Error: failed to encode response", http.StatusInternalServerError)
	}
}
