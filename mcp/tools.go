package mcp

import (
	"context"
	"fmt"
	"unicode"

	mcpgo "github.com/mark3labs/mcp-go/mcp"

	"github.com/spectro/linux-roles-mcp/logger"
	"github.com/spectro/linux-roles-mcp/outcome"
	"github.com/spectro/linux-roles-mcp/roles"
)

// Tool names
const (
	ToolRunSystemRole        = "run_system_role"
	ToolListAvailableRoles   = "list_available_roles"
	ToolGetRoleDocumentation = "get_role_documentation"
)

// RoleRunner applies a role. *roles.Runner is the production implementation.
type RoleRunner interface {
	Run(ctx context.Context, inv roles.Invocation) (outcome.Outcome, error)
}

// RoleCatalog answers listing and documentation queries. *roles.Catalog is
// the production implementation.
type RoleCatalog interface {
	List() string
	Documentation(role string) string
}

// ToolHandler runs one tool. Returning an error turns the call into a
// JSON-RPC error; argument problems belong in the result text instead.
type ToolHandler func(ctx context.Context, args map[string]any) (*mcpgo.CallToolResult, error)

type registeredTool struct {
	tool    mcpgo.Tool
	handler ToolHandler
}

// Dispatcher is the fixed, ordered tool registry.
type Dispatcher struct {
	tools []registeredTool
	env   roles.Env
	audit *logger.AuditLog
}

// NewDispatcher registers the role tools. audit may be nil.
func NewDispatcher(env roles.Env, runner RoleRunner, catalog RoleCatalog, audit *logger.AuditLog) *Dispatcher {
	d := &Dispatcher{env: env, audit: audit}

	d.register(mcpgo.NewTool(ToolRunSystemRole,
		mcpgo.WithDescription("Configure and execute a Linux System Role (e.g., aide, firewall, network)."),
		mcpgo.WithString("role_name",
			mcpgo.Required(),
			mcpgo.Description("The fully qualified role name (e.g., 'suse.linux_system_roles.aide')"),
		),
		mcpgo.WithObject("role_vars",
			mcpgo.Required(),
			mcpgo.Description("Dictionary of variables to pass to the role"),
		),
	), func(ctx context.Context, args map[string]any) (*mcpgo.CallToolResult, error) {
		role, ok := roleName(args)
		if !ok {
			return mcpgo.NewToolResultText("Error: role_name is required"), nil
		}
		vars, ok := roleVars(args)
		if !ok {
			return mcpgo.NewToolResultText("Error: role_vars must be an object"), nil
		}

		o, err := runner.Run(ctx, roles.Invocation{Role: role, Vars: vars})
		if err != nil {
			return nil, err
		}
		text, err := o.Indented()
		if err != nil {
			return nil, fmt.Errorf("failed to encode outcome: %w", err)
		}
		return mcpgo.NewToolResultText(text), nil
	})

	d.register(mcpgo.NewTool(ToolListAvailableRoles,
		mcpgo.WithDescription("List all available Linux System Roles installed on the system."),
		mcpgo.WithReadOnlyHintAnnotation(true),
		mcpgo.WithDestructiveHintAnnotation(false),
	), func(context.Context, map[string]any) (*mcpgo.CallToolResult, error) {
		return mcpgo.NewToolResultText(catalog.List()), nil
	})

	d.register(mcpgo.NewTool(ToolGetRoleDocumentation,
		mcpgo.WithDescription("Get the README documentation for a specific SUSE Linux System Role to understand its variables and usage."),
		mcpgo.WithString("role_name",
			mcpgo.Required(),
			mcpgo.Description("The short name of the role (e.g., 'aide', 'firewall', 'ssh')"),
		),
		mcpgo.WithReadOnlyHintAnnotation(true),
		mcpgo.WithDestructiveHintAnnotation(false),
	), func(_ context.Context, args map[string]any) (*mcpgo.CallToolResult, error) {
		role, ok := roleName(args)
		if !ok {
			return mcpgo.NewToolResultText("Error: role_name is required"), nil
		}
		return mcpgo.NewToolResultText(catalog.Documentation(role)), nil
	})

	return d
}

func (d *Dispatcher) register(tool mcpgo.Tool, handler ToolHandler) {
	d.tools = append(d.tools, registeredTool{tool: tool, handler: handler})
}

// Tools returns the descriptors in registration order.
func (d *Dispatcher) Tools() []mcpgo.Tool {
	tools := make([]mcpgo.Tool, len(d.tools))
	for i, rt := range d.tools {
		tools[i] = rt.tool
	}
	return tools
}

// Resolve finds the tool for a requested name. Hosts may prefix tool names
// with a server namespace (mcp__roles__run_system_role), so a registered name
// also matches as a suffix when preceded by a non-alphanumeric separator.
func (d *Dispatcher) Resolve(name string) (mcpgo.Tool, ToolHandler, bool) {
	for _, rt := range d.tools {
		if name == rt.tool.Name {
			return rt.tool, rt.handler, true
		}
	}
	for _, rt := range d.tools {
		n := rt.tool.Name
		if len(name) <= len(n) || name[len(name)-len(n):] != n {
			continue
		}
		sep := rune(name[len(name)-len(n)-1])
		if !unicode.IsLetter(sep) && !unicode.IsDigit(sep) {
			return rt.tool, rt.handler, true
		}
	}
	return mcpgo.Tool{}, nil, false
}

// Call resolves and runs a tool.
func (d *Dispatcher) Call(ctx context.Context, name string, args map[string]any) (*mcpgo.CallToolResult, error) {
	if err := d.audit.Record("Server called", "tool", name, "args", args); err != nil {
		d.env.Logger.Warn("failed to write audit log", "error", err)
	}

	tool, handler, ok := d.Resolve(name)
	if !ok {
		return nil, fmt.Errorf("Unknown tool: %s", name)
	}
	if args == nil {
		args = map[string]any{}
	}

	d.env.Logger.Debug("tool call", "tool", tool.Name, "requested", name)
	return handler(ctx, args)
}

func roleName(args map[string]any) (string, bool) {
	s, ok := args["role_name"].(string)
	return s, ok && s != ""
}

// roleVars accepts an absent or null role_vars as empty.
func roleVars(args map[string]any) (map[string]any, bool) {
	v, present := args["role_vars"]
	if !present || v == nil {
		return map[string]any{}, true
	}
	m, ok := v.(map[string]any)
	return m, ok
}
