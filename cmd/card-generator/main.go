package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	cloudevents "github.com/cloudevents/sdk-go/v2"

	"github.com/Lllllllleong/studycardflow/internal/services"
)

var (
	cardGeneratorInstance *services.CardGeneratorFunction
	once                  sync.Once
	initErr               error
)

func init() {
	// --- Set up structured logging ---
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	functions.CloudEvent("GenerateCardsOnUpload", generateCardsOnUpload)
}

// main is required by the Go Functions Framework.
func main() {}

// generateCardsOnUpload is the Cloud Function entry point for storage upload events.
func generateCardsOnUpload(ctx context.Context, e cloudevents.Event) error {
	once.Do(func() {
		cardGeneratorInstance, initErr = services.NewCardGenerator(context.Background())
	})
	if initErr != nil {
		slog.Error("Critical error during function initialization", "error", initErr)
		return initErr
	}

	var gcsEvent services.GCSEvent
	if err := json.Unmarshal(e.Data(), &gcsEvent); err != nil {
		slog.Error("Failed to unmarshal event data", "error", err, "data", string(e.Data()))
		return fmt.Errorf("json.Unmarshal: %w", err)
	}

	if err := cardGeneratorInstance.Process(ctx, gcsEvent); err != nil {
		if services.IsClientError(err) {
			// Retrying will not make the document readable.
			slog.Warn("Document rejected; not retrying.", "gcsObject", gcsEvent.Name, "error", err)
			return nil
		}
		return err
	}
	return nil
}
