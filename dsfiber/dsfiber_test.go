package dsfiber_test

import (
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/tmaxmax/go-datastar"
	"github.com/tmaxmax/go-datastar/dsfiber"
)

type store struct {
	Theme string `json:"theme"`
	Count int    `json:"count"`
}

func readBody(resp *http.Response) string {
	GinkgoHelper()

	b, err := io.ReadAll(resp.Body)
	Expect(err).NotTo(HaveOccurred())
	return string(b)
}

var _ = Describe("Fiber adapter", func() {
	var app *fiber.App

	BeforeEach(func() {
		app = fiber.New(fiber.Config{DisableStartupMessage: true})
		app.All("/signals", func(c *fiber.Ctx) error {
			var s store
			if err := dsfiber.ReadSignals(c, &s); err != nil {
				return dsfiber.Reject(c, err)
			}
			return c.JSON(s)
		})
	})

	Describe("ReadSignals", func() {
		It("reads GET signals from the query", func() {
			q := url.Values{datastar.QueryKey: {`{"theme":"dark","count":3}`}}
			req, err := http.NewRequest(http.MethodGet, "/signals?"+q.Encode(), nil)
			Expect(err).NotTo(HaveOccurred())

			resp, err := app.Test(req)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(fiber.StatusOK))
			Expect(readBody(resp)).To(MatchJSON(`{"theme":"dark","count":3}`))
		})

		It("reads POST signals from the body", func() {
			req, err := http.NewRequest(http.MethodPost, "/signals", strings.NewReader(`{"theme":"light"}`))
			Expect(err).NotTo(HaveOccurred())
			req.Header.Set("Content-Type", "application/json")

			resp, err := app.Test(req)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(fiber.StatusOK))
			Expect(readBody(resp)).To(MatchJSON(`{"theme":"light","count":0}`))
		})

		It("rejects GET requests without signals", func() {
			req, err := http.NewRequest(http.MethodGet, "/signals?foo=1", nil)
			Expect(err).NotTo(HaveOccurred())

			resp, err := app.Test(req)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(fiber.StatusBadRequest))
			Expect(readBody(resp)).To(Equal("Query string with the format `?datastar=<json>` was not found"))
		})

		It("rejects invalid query JSON", func() {
			q := url.Values{datastar.QueryKey: {`{"theme":`}}
			req, err := http.NewRequest(http.MethodGet, "/signals?"+q.Encode(), nil)
			Expect(err).NotTo(HaveOccurred())

			resp, err := app.Test(req)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(fiber.StatusBadRequest))
			Expect(readBody(resp)).To(Equal("Failed to deserialize inner json of datastar query string"))
		})

		It("rejects invalid body JSON", func() {
			req, err := http.NewRequest(http.MethodPut, "/signals", strings.NewReader("nope"))
			Expect(err).NotTo(HaveOccurred())

			resp, err := app.Test(req)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(fiber.StatusBadRequest))
			Expect(readBody(resp)).To(Equal("Failed to deserialize datastar request body"))
		})
	})

	Describe("Reject", func() {
		It("answers other errors with 500", func() {
			app.Get("/fail", func(c *fiber.Ctx) error {
				return dsfiber.Reject(c, errors.New("boom"))
			})

			req, err := http.NewRequest(http.MethodGet, "/fail", nil)
			Expect(err).NotTo(HaveOccurred())

			resp, err := app.Test(req)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(fiber.StatusInternalServerError))
		})
	})

	Describe("Stream", func() {
		It("streams the generated events", func() {
			app.Get("/events", func(c *fiber.Ctx) error {
				return dsfiber.Stream(c, func(g *datastar.Generator) error {
					if err := g.MergeFragments(`<div id="clock">12:00</div>`, datastar.MergeFragmentsOptions{}); err != nil {
						return err
					}
					return g.RemoveSignals([]string{"user.name"}, datastar.RemoveSignalsOptions{})
				})
			})

			req, err := http.NewRequest(http.MethodGet, "/events", nil)
			Expect(err).NotTo(HaveOccurred())

			resp, err := app.Test(req)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(fiber.StatusOK))
			Expect(resp.Header.Get("Content-Type")).To(Equal("text/event-stream"))
			Expect(resp.Header.Get("Cache-Control")).To(Equal("no-cache"))

			Expect(readBody(resp)).To(Equal(
				"event: datastar-merge-fragments\n" +
					"data: fragments <div id=\"clock\">12:00</div>\n" +
					"\n" +
					"event: datastar-remove-signals\n" +
					"data: paths user.name\n" +
					"\n"))
		})
	})

	Describe("Respond", func() {
		It("writes every event in one body", func() {
			resp := datastar.NewResponse(
				datastar.MergeSignals(`{"count":1}`, datastar.MergeSignalsOptions{}),
				datastar.ExecuteScript("console.log(1)", datastar.ExecuteScriptOptions{}),
			)
			app.Get("/once", func(c *fiber.Ctx) error {
				return dsfiber.Respond(c, resp)
			})
			app.Get("/handler", dsfiber.Handler(resp))

			for _, path := range []string{"/once", "/handler"} {
				req, err := http.NewRequest(http.MethodGet, path, nil)
				Expect(err).NotTo(HaveOccurred())

				res, err := app.Test(req)
				Expect(err).NotTo(HaveOccurred())
				Expect(res.StatusCode).To(Equal(fiber.StatusOK))
				Expect(res.Header.Get("Content-Type")).To(Equal("text/event-stream"))
				Expect(readBody(res)).To(Equal(resp.String()))
			}
		})
	})
})
