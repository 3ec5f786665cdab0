// Package main is the entry point for the toyparse CLI and server.
package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lemonberrylabs/toyparse/pkg/api"
	grpcapi "github.com/lemonberrylabs/toyparse/pkg/api/grpc"
	"github.com/lemonberrylabs/toyparse/pkg/combinator"
	"github.com/lemonberrylabs/toyparse/pkg/config"
	"github.com/lemonberrylabs/toyparse/pkg/lexer"
	"github.com/lemonberrylabs/toyparse/pkg/parser"
	"github.com/lemonberrylabs/toyparse/pkg/render"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// errReported marks a failure whose diagnostic was already written.
var errReported = errors.New("reported")

func main() {
	if err := newRootCmd(os.Stdin, os.Stdout, os.Stderr).Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "toyparse",
		Short:         "Tokenizer and parser for a small expression language",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.Version = version + " (commit=" + commit + ", built=" + date + ")"
	root.SetVersionTemplate("toyparse version {{.Version}}\n")
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.PersistentFlags().String("config", "", "Path to a YAML config file (env TOYPARSE_CONFIG)")
	root.PersistentFlags().String("format", "", "Output format: text, json or yaml (default text, env TOYPARSE_FORMAT)")

	root.AddCommand(
		sourceCmd("tokenize", "Split source into tokens", tokenize),
		sourceCmd("parse", "Parse a single expression", parseExpr),
		sourceCmd("decl", "Parse a single declaration", parseDecl),
		sourceCmd("program", "Parse a sequence of declarations", parseProgram),
		sourceCmd("primitive", "Parse a primitive value with the combinator core", parsePrimitive),
		serveCmd(),
	)
	return root
}

// result is what a subcommand prints: a text rendering and a structured
// document for json/yaml.
type result struct {
	text string
	doc  interface{}
}

func sourceCmd(name, short string, fn func(src string) (result, error)) *cobra.Command {
	return &cobra.Command{
		Use:   name + " [source]",
		Short: short,
		Long:  short + ". The source is read from the argument, or from stdin when omitted.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			format, err := render.ParseFormat(cfg.Format)
			if err != nil {
				return err
			}
			src, err := readSource(cmd, args)
			if err != nil {
				return err
			}
			if len(src) > cfg.MaxInputLength {
				return fmt.Errorf("source exceeds maximum length of %d bytes", cfg.MaxInputLength)
			}

			res, err := fn(src)
			if err != nil {
				if werr := render.Write(cmd.ErrOrStderr(), format, "Error: "+err.Error(), map[string]interface{}{"error": render.Error(err)}); werr != nil {
					return werr
				}
				return errReported
			}
			return render.Write(cmd.OutOrStdout(), format, res.text, res.doc)
		},
	}
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path := os.Getenv("TOYPARSE_CONFIG")
	if v, _ := cmd.Flags().GetString("config"); v != "" {
		path = v
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if v, _ := cmd.Flags().GetString("format"); v != "" {
		cfg.Format = v
	}
	return cfg, nil
}

func readSource(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return strings.TrimRight(string(data), "\r\n"), nil
}

func tokenize(src string) (result, error) {
	tokens, err := lexer.Tokenize(src)
	if err != nil {
		return result{}, err
	}
	return result{text: render.TokensText(tokens), doc: render.Tokens(tokens)}, nil
}

func parseExpr(src string) (result, error) {
	expr, err := parser.ParseExpression(src)
	if err != nil {
		return result{}, err
	}
	return result{text: expr.String(), doc: render.Expr(expr)}, nil
}

func parseDecl(src string) (result, error) {
	d, err := parser.ParseDeclaration(src)
	if err != nil {
		return result{}, err
	}
	return result{text: d.String(), doc: render.Decl(d)}, nil
}

func parseProgram(src string) (result, error) {
	decls, err := parser.ParseProgram(src)
	if err != nil {
		return result{}, err
	}
	lines := make([]string, len(decls))
	docs := make([]interface{}, len(decls))
	for i, d := range decls {
		lines[i] = d.String()
		docs[i] = render.Decl(d)
	}
	return result{text: strings.Join(lines, "\n"), doc: docs}, nil
}

func parsePrimitive(src string) (result, error) {
	rest, v, err := combinator.ParsePrimitive(src)
	if err != nil {
		return result{}, err
	}
	text := v.String()
	if rest != "" {
		text += fmt.Sprintf(" rest=%q", rest)
	}
	return result{text: text, doc: render.Primitive(v, rest)}, nil
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP and gRPC APIs",
		Args:  cobra.NoArgs,
		RunE:  serve,
	}
	cmd.Flags().Int("port", 0, "HTTP server port (default 8787, env PORT)")
	cmd.Flags().Int("grpc-port", 0, "gRPC server port (default 8788, env GRPC_PORT)")
	cmd.Flags().String("host", "", "Bind address (default 0.0.0.0, env HOST)")
	return cmd
}

func serve(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if v, _ := cmd.Flags().GetInt("port"); v != 0 {
		cfg.Port = v
	}
	if v, _ := cmd.Flags().GetInt("grpc-port"); v != 0 {
		cfg.GRPCPort = v
	}
	if v, _ := cmd.Flags().GetString("host"); v != "" {
		cfg.Host = v
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	server := api.New(cfg.MaxInputLength)

	grpcServer := grpcapi.New(cfg.MaxInputLength)
	go func() {
		log.Printf("gRPC server listening on %s", cfg.GRPCAddr())
		if err := grpcServer.Serve(cfg.GRPCAddr()); err != nil {
			log.Fatalf("gRPC server error: %v", err)
		}
	}()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Println("Shutting down toyparse...")
		grpcServer.GracefulStop()
		if err := server.Shutdown(); err != nil {
			log.Printf("Error during shutdown: %v", err)
		}
	}()

	log.Printf("toyparse %s listening on %s (max input %d bytes)", version, cfg.Addr(), cfg.MaxInputLength)
	return server.Listen(cfg.Addr())
}
