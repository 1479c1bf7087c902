package security

import (
	"net/http/httptest"
	"testing"

	"github.com/go-playground/assert/v2"
	"github.com/gofiber/fiber/v2"
)

func TestHeadersMiddleware(t *testing.T) {
	app := fiber.New()
	app.Use(HeadersMiddleware(HeadersConfig{AllowedOrigins: []string{"https://app.example.com"}}))
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString("ok") })

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))

	assert.Equal(t, nil, err)
	assert.Equal(t, "DENY", resp.Header.Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	assert.NotEqual(t, "", resp.Header.Get("Strict-Transport-Security"))
	assert.MatchRegex(t, resp.Header.Get("Content-Security-Policy"), `connect-src 'self' https://app\.example\.com;`)
}

func TestHeadersMiddleware_DevelopmentSkipsHSTS(t *testing.T) {
	app := fiber.New()
	app.Use(HeadersMiddleware(HeadersConfig{IsDevelopment: true}))
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString("ok") })

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))

	assert.Equal(t, nil, err)
	assert.Equal(t, "", resp.Header.Get("Strict-Transport-Security"))
}

func TestPreviewSecretMiddleware(t *testing.T) {
	tests := []struct {
		name   string
		secret string
		header string
		want   int
	}{
		{name: "disabled", secret: "", header: "", want: fiber.StatusOK},
		{name: "missing", secret: "s3cret", header: "", want: fiber.StatusUnauthorized},
		{name: "wrong", secret: "s3cret", header: "nope", want: fiber.StatusUnauthorized},
		{name: "match", secret: "s3cret", header: "s3cret", want: fiber.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Use(PreviewSecretMiddleware(tt.secret, nil))
			app.Post("/", func(c *fiber.Ctx) error { return c.SendString("ok") })

			req := httptest.NewRequest("POST", "/", nil)
			if tt.header != "" {
				req.Header.Set(PreviewSecretHeader, tt.header)
			}
			resp, err := app.Test(req)

			assert.Equal(t, nil, err)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}
