package mcp

import (
	"context"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/weft"
	"github.com/aretw0/weft/pkg/dynamic"
	"github.com/aretw0/weft/pkg/writable"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Engine defines the conversions the MCP server exposes.
type Engine interface {
	Scope() dynamic.Scope
	ToWritable(v any) (writable.Record, error)
	ToOrderedWritable(v any) (writable.Ordered, error)
	ToDynamic(r writable.Record) (dynamic.Value, error)
}

// EncodeResult is the structured output of to_writable.
type EncodeResult struct {
	Type string `json:"type" jsonschema_description:"Record type, usable as the type argument of to_dynamic"`
	Data string `json:"data" jsonschema_description:"Hex encoded record bytes"`
}

// DecodeResult is the structured output of to_dynamic.
type DecodeResult struct {
	Value any `json:"value" jsonschema_description:"The record as a JSON value"`
}

// KindsResult is the structured output of list_kinds.
type KindsResult struct {
	Kinds []Kind `json:"kinds" jsonschema_description:"Built-in Writable kinds"`
}

type Kind struct {
	Name      string `json:"name"`
	Class     string `json:"class"`
	Ordered   bool   `json:"ordered" jsonschema_description:"Whether the kind can key a SortedMapWritable"`
	Container bool   `json:"container"`
}

// Server wraps the weft Engine and exposes it as an MCP Server.
type Server struct {
	engine    Engine
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance. A nil logger means
// slog.Default().
func NewServer(engine Engine, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		engine:    engine,
		logger:    logger,
		mcpServer: server.NewMCPServer("weft-mcp", strings.TrimSpace(weft.Version)),
	}
	s.registerTools()
	return s
}

// MCPServer returns the underlying mcp-go server.
func (s *Server) MCPServer() *server.MCPServer { return s.mcpServer }

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves the SSE transport on addr until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, addr string) error {
	host := addr
	if strings.HasPrefix(host, ":") {
		host = "localhost" + host
	}
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL("http://"+host))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func (s *Server) registerTools() {
	// TOOL: to_writable
	toWritable := mcp.NewTool("to_writable",
		mcp.WithDescription("Convert a JSON value to a Hadoop Writable record."),
		mcp.WithString("value", mcp.Required(), mcp.Description("The value, as a JSON document")),
		mcp.WithBoolean("ordered", mcp.Description("Produce an order-capable (WritableComparable) record")),
		mcp.WithBoolean("tagged", mcp.Description("Prefix the record with its type")),
		mcp.WithOutputSchema[EncodeResult](),
	)
	s.mcpServer.AddTool(toWritable, mcp.NewStructuredToolHandler(s.handleToWritable))

	// TOOL: to_dynamic
	toDynamic := mcp.NewTool("to_dynamic",
		mcp.WithDescription("Convert a hex encoded Writable record to a JSON value."),
		mcp.WithString("data", mcp.Required(), mcp.Description("Hex encoded record bytes")),
		mcp.WithString("type", mcp.Description("Record type such as Text, Map or [Int32]; required unless tagged")),
		mcp.WithBoolean("tagged", mcp.Description("The record is prefixed with its type")),
		mcp.WithOutputSchema[DecodeResult](),
	)
	s.mcpServer.AddTool(toDynamic, mcp.NewStructuredToolHandler(s.handleToDynamic))

	// TOOL: list_kinds
	listKinds := mcp.NewTool("list_kinds",
		mcp.WithDescription("List the built-in Writable kinds."),
		mcp.WithOutputSchema[KindsResult](),
	)
	s.mcpServer.AddTool(listKinds, mcp.NewStructuredToolHandler(s.handleListKinds))
}

func (s *Server) handleToWritable(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (EncodeResult, error) {
	raw, _ := args["value"].(string)
	ordered, _ := args["ordered"].(bool)
	tagged, _ := args["tagged"].(bool)

	value, err := dynamic.ParseJSON([]byte(raw), s.engine.Scope())
	if err != nil {
		return EncodeResult{}, fmt.Errorf("invalid value: %w", err)
	}

	var rec writable.Record
	if ordered {
		rec, err = s.engine.ToOrderedWritable(value)
	} else {
		rec, err = s.engine.ToWritable(value)
	}
	if err != nil {
		s.logger.Warn("MCP to_writable: conversion failed", "err", err)
		return EncodeResult{}, err
	}

	var data []byte
	if tagged {
		data, err = writable.MarshalTagged(rec)
	} else {
		data, err = writable.Marshal(rec)
	}
	if err != nil {
		return EncodeResult{}, fmt.Errorf("encode failed: %w", err)
	}
	return EncodeResult{Type: writable.TypeFor(rec).String(), Data: hex.EncodeToString(data)}, nil
}

func (s *Server) handleToDynamic(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (DecodeResult, error) {
	text, _ := args["data"].(string)
	typeStr, _ := args["type"].(string)
	tagged, _ := args["tagged"].(bool)

	data, err := hex.DecodeString(strings.TrimSpace(text))
	if err != nil {
		return DecodeResult{}, fmt.Errorf("invalid hex data: %w", err)
	}

	var rec writable.Record
	switch {
	case tagged:
		rec, err = writable.UnmarshalTagged(data)
	case typeStr == "":
		return DecodeResult{}, fmt.Errorf("type is required for untagged records")
	default:
		var t writable.Type
		if t, err = writable.ParseType(typeStr); err != nil {
			return DecodeResult{}, err
		}
		rec, err = writable.Unmarshal(data, t)
	}
	if err != nil {
		return DecodeResult{}, fmt.Errorf("invalid record: %w", err)
	}

	value, err := s.engine.ToDynamic(rec)
	if err != nil {
		s.logger.Warn("MCP to_dynamic: conversion failed", "err", err)
		return DecodeResult{}, err
	}
	return DecodeResult{Value: value}, nil
}

func (s *Server) handleListKinds(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (KindsResult, error) {
	var out KindsResult
	for _, k := range writable.Kinds() {
		out.Kinds = append(out.Kinds, Kind{
			Name:      k.String(),
			Class:     k.ClassName(),
			Ordered:   k.IsOrdered(),
			Container: k.IsContainer(),
		})
	}
	return out, nil
}
