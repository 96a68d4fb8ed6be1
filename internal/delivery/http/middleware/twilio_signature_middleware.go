package middleware

import (
	"net/http"
	"strings"

	"medverify/pkg/response"

	"github.com/sirupsen/logrus"
)

const twilioSignatureHeader = "X-Twilio-Signature"

// SignatureValidator checks a webhook signature over the public URL and form parameters.
type SignatureValidator interface {
	Validate(url string, params map[string]string, signature string) bool
}

type TwilioSignatureMiddleware struct {
	validator     SignatureValidator
	publicBaseURL string
	enabled       bool
	log           *logrus.Logger
}

func NewTwilioSignatureMiddleware(validator SignatureValidator, publicBaseURL string, enabled bool, log *logrus.Logger) *TwilioSignatureMiddleware {
	return &TwilioSignatureMiddleware{
		validator:     validator,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		enabled:       enabled,
		log:           log,
	}
}

func (m *TwilioSignatureMiddleware) Verify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.enabled {
			next.ServeHTTP(w, r)
			return
		}

		if err := r.ParseForm(); err != nil {
			response.Status(w, http.StatusBadRequest, "error", "Invalid form body")
			return
		}

		params := make(map[string]string, len(r.PostForm))
		for key, values := range r.PostForm {
			if len(values) > 0 {
				params[key] = values[0]
			}
		}

		url := m.publicBaseURL + r.URL.RequestURI()
		if !m.validator.Validate(url, params, r.Header.Get(twilioSignatureHeader)) {
			m.log.WithField("url", url).Warn("Rejected webhook with invalid signature")
			response.Status(w, http.StatusUnauthorized, "error", "Invalid webhook signature")
			return
		}

		next.ServeHTTP(w, r)
	})
}
