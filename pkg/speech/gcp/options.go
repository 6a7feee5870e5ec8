package gcp

import (
	"os"
	"strings"

	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"sahayak-be/pkg/apperror"
	"sahayak-be/pkg/i18n"
)

// ClientOptionsFromEnv resolves Google credentials from the environment,
// accepting either inline JSON or a file path. An empty result falls back to
// application default credentials.
func ClientOptionsFromEnv() []option.ClientOption {
	creds := strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS_JSON"))
	if creds == "" {
		creds = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}
	opts := []option.ClientOption{}
	if creds == "" {
		return opts
	}
	if strings.HasPrefix(creds, "{") {
		opts = append(opts, option.WithCredentialsJSON([]byte(creds)))
	} else {
		opts = append(opts, option.WithCredentialsFile(creds))
	}
	return opts
}

// languageCode maps an assistant language to the provider's BCP-47 code.
func languageCode(lang i18n.Language) string {
	switch lang {
	case i18n.Hindi:
		return "hi-IN"
	default:
		return "en-IN"
	}
}

// classify maps a provider gRPC error onto the error taxonomy so the retry
// policy can tell a retryable outage from a permanent rejection.
func classify(err error, msg string) error {
	switch status.Code(err) {
	case codes.Unavailable, codes.ResourceExhausted, codes.DeadlineExceeded, codes.Aborted:
		return apperror.Wrap(apperror.KindTransient, err, msg)
	case codes.InvalidArgument, codes.OutOfRange:
		return apperror.Wrap(apperror.KindValidation, err, msg)
	default:
		return apperror.Wrap(apperror.KindTransient, err, msg)
	}
}
