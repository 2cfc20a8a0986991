// Package dsfiber adapts the datastar package to Fiber handlers.
package dsfiber

import (
	"bytes"
	"errors"
	"io"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"

	"github.com/tmaxmax/go-datastar"
)

// ReadSignals decodes the signals Datastar sent with the request into v.
// Errors are of type *datastar.RequestError.
func ReadSignals(c *fiber.Ctx, v any) error {
	var body io.Reader
	if b := c.Body(); len(b) > 0 {
		body = bytes.NewReader(b)
	}
	return datastar.DecodeSignals(c.Method(), string(c.Request().URI().QueryString()), body, v)
}

// Reject answers the client with the error returned by ReadSignals.
// Request errors are sent as 400 Bad Request with their fixed message;
// any other error results in a 500 Internal Server Error.
func Reject(c *fiber.Ctx, err error) error {
	var rerr *datastar.RequestError
	if !errors.As(err, &rerr) {
		return c.SendStatus(fiber.StatusInternalServerError)
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	return c.Status(fiber.StatusBadRequest).SendString(rerr.Rejection.Message())
}

// Stream sets the Datastar stream headers and runs fn, which sends events
// through the given generator. fn runs in its own goroutine and the response
// body is streamed to the client while it runs; the handler returns immediately.
//
// Sends fail once the client goes away. The error returned by fn aborts the
// response body.
func Stream(c *fiber.Ctx, fn func(g *datastar.Generator) error) error {
	c.Set(fiber.HeaderCacheControl, datastar.CacheControl)
	c.Set(fiber.HeaderConnection, datastar.Connection)
	c.Set(fiber.HeaderContentType, datastar.ContentType)

	// io.Pipe blocks each write until fasthttp consumes it, so every event
	// reaches the socket as its own chunk.
	pr, pw := io.Pipe()
	go func() {
		_ = pw.CloseWithError(fn(datastar.NewGenerator(pw, nil)))
	}()

	c.Context().Response.SetBodyStream(pr, -1)
	return nil
}

// Respond sends all the events of resp in a single body.
func Respond(c *fiber.Ctx, resp *datastar.Response) error {
	return adaptor.HTTPHandler(resp)(c)
}

// Handler returns a Fiber handler that serves resp on every request.
func Handler(resp *datastar.Response) fiber.Handler {
	return adaptor.HTTPHandler(resp)
}
