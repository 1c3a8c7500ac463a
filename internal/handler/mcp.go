// MCP transport handler using the official MCP Go SDK.
// Exposes banner configuration resolution as MCP tools.
package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"oil-config/internal/geo"
	"oil-config/internal/model"
	"oil-config/internal/oilconfig"
	"oil-config/internal/release"
	"oil-config/internal/session"
)

// === MCP Tool Input/Output Types ===

// ResolveInput is the input schema for resolve_banner_settings.
// Every field is a session hint; an empty input resolves the configured defaults.
type ResolveInput struct {
	Locale  string `json:"locale,omitempty" jsonschema:"locale variant name to use instead of the configured one, e.g. deDE_01"`
	GDPR    *bool  `json:"gdpr,omitempty" jsonschema:"force GDPR applicability on or off"`
	Country string `json:"country,omitempty" jsonschema:"ISO 3166-1 alpha-2 visitor country; outside the EEA and UK disables consent gating"`
}

// LanguageInput is the input schema for language_from_locale.
type LanguageInput struct {
	Locale string `json:"locale" jsonschema:"locale variant name, e.g. plPL_01,required"`
}

// NewMCPServer creates an MCP server with the configuration tools registered.
// The server exposes the same operations as the REST API but via MCP protocol.
func (h *Handler) NewMCPServer() *mcp.Server {
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "oil-config",
			Version: release.Normalize(release.Version),
		},
		&mcp.ServerOptions{
			Instructions: "OIL banner configuration - resolves the effective consent banner settings " +
				"for a visitor session from the publisher's page configuration.",
		},
	)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "resolve_banner_settings",
		Description: "Resolve the effective consent banner settings, optionally for a given locale, GDPR decision or visitor country.",
	}, h.mcpResolve)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "language_from_locale",
		Description: "Return the two-letter language code of a locale variant name.",
	}, h.mcpLanguage)

	return server
}

// NewMCPHandler returns an HTTP handler for the MCP endpoint.
// Mount this at /mcp on your mux.
func (h *Handler) NewMCPHandler() http.Handler {
	server := h.NewMCPServer()
	return mcp.NewStreamableHTTPHandler(
		func(r *http.Request) *mcp.Server { return server },
		nil,
	)
}

// === Tool Handlers ===

func (h *Handler) mcpResolve(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input ResolveInput,
) (*mcp.CallToolResult, model.BannerSettings, error) {
	country := strings.ToUpper(strings.TrimSpace(input.Country))
	if country != "" && !geo.Known(country) {
		return nil, model.BannerSettings{}, h.mcpError(model.NewValidationError("country", "must be an ISO 3166-1 alpha-2 code"))
	}

	hints := session.Hints{
		Locale:  strings.TrimSpace(input.Locale),
		GDPR:    input.GDPR,
		Country: country,
	}

	resolver, err := h.resolve(ctx, hints)
	if err != nil {
		return nil, model.BannerSettings{}, h.mcpError(err)
	}

	return nil, resolver.Snapshot(), nil
}

func (h *Handler) mcpLanguage(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input LanguageInput,
) (*mcp.CallToolResult, LanguageResult, error) {
	locale := strings.TrimSpace(input.Locale)
	if locale == "" {
		return nil, LanguageResult{}, fmt.Errorf("locale is required")
	}

	return nil, LanguageResult{
		Locale:   locale,
		Language: oilconfig.LanguageFromLocale(locale),
	}, nil
}

// mcpError converts errors to MCP-friendly errors.
func (h *Handler) mcpError(err error) error {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) && apiErr.Code != "INTERNAL_ERROR" {
		return fmt.Errorf("%s: %s", apiErr.Code, apiErr.Message)
	}
	// Don't leak internal error details
	h.logger.Error("mcp internal error", "error", err.Error())
	return fmt.Errorf("internal error")
}
