// Package firebase bootstraps the Firebase Admin SDK and adapts its auth
// client to the identity provider used by the services.
package firebase

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"os"

	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"

	"audti-backend-go/internal/config"
)

// NewApp initializes the Firebase Admin SDK from configuration. Credentials
// come from a file path, a base64-encoded service account JSON, or
// Application Default Credentials, in that order.
func NewApp(ctx context.Context, cfg *config.Config) (*firebase.App, error) {
	if cfg == nil {
		return nil, errors.New("firebase.NewApp: config cannot be nil")
	}

	var opts []option.ClientOption
	switch {
	case cfg.GoogleApplicationCredentials != "":
		log.Printf("Initializing Firebase with credentials file: %s", cfg.GoogleApplicationCredentials)
		if _, err := os.Stat(cfg.GoogleApplicationCredentials); os.IsNotExist(err) {
			log.Printf("Warning: Credentials file specified in GOOGLE_APPLICATION_CREDENTIALS does not exist: %s", cfg.GoogleApplicationCredentials)
		}
		opts = append(opts, option.WithCredentialsFile(cfg.GoogleApplicationCredentials))
	case cfg.FirebaseServiceAccountJSONBase64 != "":
		log.Println("Initializing Firebase with Base64 encoded service account JSON.")
		jsonKey, err := base64.StdEncoding.DecodeString(cfg.FirebaseServiceAccountJSONBase64)
		if err != nil {
			return nil, fmt.Errorf("FIREBASE_SERVICE_ACCOUNT_JSON_BASE64 is not a valid base64 string: %w", err)
		}
		opts = append(opts, option.WithCredentialsJSON(jsonKey))
	default:
		log.Println("Initializing Firebase using Application Default Credentials (ADC).")
	}

	var appConfig *firebase.Config
	if cfg.FirebaseProjectID != "" {
		appConfig = &firebase.Config{ProjectID: cfg.FirebaseProjectID}
	}

	app, err := firebase.NewApp(ctx, appConfig, opts...)
	if err != nil {
		return nil, fmt.Errorf("error initializing Firebase app: %w", err)
	}
	return app, nil
}
