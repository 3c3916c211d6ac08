package services

import (
	"context"
	"errors"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"
)

var (
	// FirebaseApp is the Firebase app instance
	FirebaseApp *firebase.App
	// AuthClient verifies ID tokens issued by the identity provider
	AuthClient *auth.Client
)

// ErrFirebaseDisabled is returned when token verification is requested but
// no service account was configured.
var ErrFirebaseDisabled = errors.New("firebase auth not configured")

// InitFirebase initializes the Firebase Admin SDK used to verify ID tokens.
// Leaving the credentials path empty disables Firebase sign-in; the local
// register/login endpoints keep working.
func InitFirebase(serviceAccountPath string) error {
	if serviceAccountPath == "" {
		logrus.Warn("FIREBASE_SERVICE_ACCOUNT_PATH not set; Firebase sign-in disabled")
		return nil
	}

	ctx := context.Background()
	opt := option.WithCredentialsFile(serviceAccountPath)
	app, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		return fmt.Errorf("error initializing firebase app: %v", err)
	}

	client, err := app.Auth(ctx)
	if err != nil {
		return fmt.Errorf("error getting auth client: %v", err)
	}

	FirebaseApp = app
	AuthClient = client

	logrus.Info("Firebase auth initialized successfully")
	return nil
}

// VerifyIDToken checks a Firebase ID token and returns the provider identity
// (uid and email) the core maps to an application user.
func VerifyIDToken(ctx context.Context, idToken string) (uid, email string, err error) {
	if AuthClient == nil {
		return "", "", ErrFirebaseDisabled
	}

	token, err := AuthClient.VerifyIDToken(ctx, idToken)
	if err != nil {
		return "", "", fmt.Errorf("invalid ID token: %v", err)
	}

	email, _ = token.Claims["email"].(string)
	return token.UID, email, nil
}
