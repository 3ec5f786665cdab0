// Package api implements the HTTP surface for the tokenizer and parsers.
package api

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/lemonberrylabs/toyparse/pkg/combinator"
	"github.com/lemonberrylabs/toyparse/pkg/config"
	"github.com/lemonberrylabs/toyparse/pkg/lexer"
	"github.com/lemonberrylabs/toyparse/pkg/parser"
	"github.com/lemonberrylabs/toyparse/pkg/render"
)

// Server is the HTTP API server.
type Server struct {
	app      *fiber.App
	maxInput int
}

// New creates a new API server. Sources longer than maxInput bytes are
// rejected; a non-positive maxInput selects the default.
func New(maxInput int) *Server {
	if maxInput <= 0 {
		maxInput = config.DefaultMaxInputLength
	}
	srv := &Server{maxInput: maxInput}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          30 * time.Second,
	})

	app.Use(requestID)
	app.Get("/healthz", srv.health)
	app.Post("/v1/tokenize", srv.tokenize)
	app.Post("/v1/parse", srv.parse)
	app.Post("/v1/decl", srv.decl)
	app.Post("/v1/program", srv.program)
	app.Post("/v1/primitive", srv.primitive)

	srv.app = app
	return srv
}

// Listen starts the HTTP server on the given address.
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// App returns the underlying Fiber app (useful for testing).
func (s *Server) App() *fiber.App {
	return s.app
}

// requestID tags every response with X-Request-Id, reusing the caller's.
func requestID(c *fiber.Ctx) error {
	id := c.Get(fiber.HeaderXRequestID)
	if id == "" {
		id = uuid.NewString()
	}
	c.Set(fiber.HeaderXRequestID, id)
	return c.Next()
}

type sourceRequest struct {
	Source string `json:"source"`
}

// readSource decodes the request body and enforces the size limit. A
// non-empty problem describes why the request was rejected.
func (s *Server) readSource(c *fiber.Ctx) (src, problem string) {
	var req sourceRequest
	if err := c.BodyParser(&req); err != nil {
		return "", fmt.Sprintf("invalid request body: %v", err)
	}
	if len(req.Source) > s.maxInput {
		return "", fmt.Sprintf("source exceeds maximum length of %d bytes", s.maxInput)
	}
	return req.Source, ""
}

func (s *Server) health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (s *Server) tokenize(c *fiber.Ctx) error {
	src, problem := s.readSource(c)
	if problem != "" {
		return badRequest(c, problem, nil)
	}
	tokens, err := lexer.Tokenize(src)
	if err != nil {
		return parseFailure(c, err)
	}
	return c.JSON(fiber.Map{
		"tokens": render.Tokens(tokens),
		"text":   render.TokensText(tokens),
	})
}

func (s *Server) parse(c *fiber.Ctx) error {
	src, problem := s.readSource(c)
	if problem != "" {
		return badRequest(c, problem, nil)
	}
	expr, err := parser.ParseExpression(src)
	if err != nil {
		return parseFailure(c, err)
	}
	return c.JSON(fiber.Map{
		"expr": render.Expr(expr),
		"text": expr.String(),
	})
}

func (s *Server) decl(c *fiber.Ctx) error {
	src, problem := s.readSource(c)
	if problem != "" {
		return badRequest(c, problem, nil)
	}
	d, err := parser.ParseDeclaration(src)
	if err != nil {
		return parseFailure(c, err)
	}
	return c.JSON(fiber.Map{
		"decl": render.Decl(d),
		"text": d.String(),
	})
}

func (s *Server) program(c *fiber.Ctx) error {
	src, problem := s.readSource(c)
	if problem != "" {
		return badRequest(c, problem, nil)
	}
	decls, err := parser.ParseProgram(src)
	if err != nil {
		return parseFailure(c, err)
	}
	docs := make([]interface{}, len(decls))
	for i, d := range decls {
		docs[i] = render.Decl(d)
	}
	return c.JSON(fiber.Map{"decls": docs})
}

func (s *Server) primitive(c *fiber.Ctx) error {
	src, problem := s.readSource(c)
	if problem != "" {
		return badRequest(c, problem, nil)
	}
	rest, v, err := combinator.ParsePrimitive(src)
	if err != nil {
		return parseFailure(c, err)
	}
	return c.JSON(fiber.Map{
		"value": render.Primitive(v, rest),
		"text":  v.String(),
	})
}

// --- errors ---

func badRequest(c *fiber.Ctx, msg string, details fiber.Map) error {
	body := fiber.Map{
		"code":    400,
		"message": msg,
		"status":  "INVALID_ARGUMENT",
	}
	if details != nil {
		body["details"] = details
	}
	return c.Status(400).JSON(fiber.Map{"error": body})
}

// parseFailure reports a lexer or parser error with its diagnostics.
func parseFailure(c *fiber.Ctx, err error) error {
	return badRequest(c, err.Error(), render.Error(err))
}
