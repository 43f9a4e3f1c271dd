package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/spf13/cobra"
	"github.com/z58362026/mcp-packages/internal/mcp"
	"github.com/z58362026/mcp-packages/internal/ui"
	"github.com/z58362026/mcp-packages/pkg/schema"
)

// mcpApp is an MCP client whose config file can hold the server entry.
type mcpApp struct {
	name    string
	display string
	// serversKey is the top-level object holding server entries.
	serversKey string
	// stdioType adds "type": "stdio" to the entry.
	stdioType bool
	global    bool
}

var mcpApps = []mcpApp{
	{name: "claude-desktop", display: "Claude Desktop", serversKey: "mcpServers", global: true},
	{name: "claude-code", display: "Claude Code", serversKey: "mcpServers"},
	{name: "cursor", display: "Cursor", serversKey: "mcpServers", stdioType: true},
	{name: "vscode", display: "VS Code", serversKey: "servers", stdioType: true},
}

var (
	registerApps    []string
	registerCommand string
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Register the MCP server with Claude, Cursor or VS Code",
	Long: `Add an mcp-packages entry to the MCP config of the selected apps.

Claude Desktop is configured globally; the other apps are configured for the
project in the working directory. Existing entries for other servers are kept
and the previous file is saved next to it with a .bak suffix.`,
	Example: `  mcpkg register
  mcpkg register --app cursor --app vscode
  mcpkg register --app all --command /usr/local/bin/mcpkg`,
	RunE: runRegister,
}

func init() {
	rootCmd.AddCommand(registerCmd)

	registerCmd.Flags().StringSliceVar(&registerApps, "app", nil, "apps to configure: claude-desktop, claude-code, cursor, vscode or all")
	registerCmd.Flags().StringVar(&registerCommand, "command", "", "server command to register (default: this executable)")
}

func runRegister(cmd *cobra.Command, args []string) error {
	apps, err := selectApps(registerApps)
	if err != nil {
		return err
	}

	command := registerCommand
	if command == "" {
		if command, err = os.Executable(); err != nil {
			return fmt.Errorf("failed to locate executable: %w", err)
		}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to locate home directory: %w", err)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}

	fsys := osfs.New("/")
	registered := 0
	for _, app := range apps {
		path := app.configPath(home, cwd, runtime.GOOS)
		if path == "" {
			ui.PrintWarn(fmt.Sprintf("%s: config location unknown on %s", app.display, runtime.GOOS))
			continue
		}
		if err := registerServer(fsys, app, path, command); err != nil {
			ui.PrintError(fmt.Sprintf("%s: %v", app.display, err))
			continue
		}
		scope := "project"
		if app.global {
			scope = "global"
		}
		ui.PrintOK(fmt.Sprintf("Registered with %s (%s)", app.display, scope))
		ui.PrintIndent(path)
		registered++
	}

	if registered == 0 {
		return fmt.Errorf("no app was configured")
	}
	ui.PrintDone("Reload the configured apps to pick up the server")
	return nil
}

// selectApps maps --app values to apps, prompting when none were given.
func selectApps(names []string) ([]mcpApp, error) {
	if len(names) == 0 {
		items := make([]string, 0, len(mcpApps)+1)
		for _, app := range mcpApps {
			items = append(items, app.name)
		}
		choice, err := selectOption("Register with", append(items, "all"))
		if err != nil {
			return nil, err
		}
		names = []string{choice}
	}

	var apps []mcpApp
	for _, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "all" {
			return mcpApps, nil
		}
		app, ok := lookupApp(name)
		if !ok {
			return nil, schema.Validationf("unknown app %q", name)
		}
		apps = append(apps, app)
	}
	return apps, nil
}

func lookupApp(name string) (mcpApp, bool) {
	for _, app := range mcpApps {
		if app.name == name {
			return app, true
		}
	}
	return mcpApp{}, false
}

func (a mcpApp) configPath(home, cwd, goos string) string {
	switch a.name {
	case "claude-desktop":
		switch goos {
		case "windows":
			return filepath.Join(os.Getenv("APPDATA"), "Claude", "claude_desktop_config.json")
		case "darwin":
			return filepath.Join(home, "Library", "Application Support", "Claude", "claude_desktop_config.json")
		case "linux":
			return filepath.Join(home, ".config", "Claude", "claude_desktop_config.json")
		}
		return ""
	case "claude-code":
		return filepath.Join(cwd, ".mcp.json")
	case "cursor":
		return filepath.Join(cwd, ".cursor", "mcp.json")
	case "vscode":
		return filepath.Join(cwd, ".vscode", "mcp.json")
	}
	return ""
}

// registerServer merges the server entry into the JSON document at path.
// Unknown keys are preserved; an unparsable file is replaced after backup.
func registerServer(fsys billy.Filesystem, app mcpApp, path, command string) error {
	doc := map[string]any{}

	existing, err := util.ReadFile(fsys, path)
	switch {
	case err == nil:
		if err := util.WriteFile(fsys, path+".bak", existing, 0o644); err != nil {
			return fmt.Errorf("failed to back up %s: %w", path, err)
		}
		if err := json.Unmarshal(existing, &doc); err != nil || doc == nil {
			ui.PrintWarn(fmt.Sprintf("%s is not valid JSON; starting from an empty config", path))
			doc = map[string]any{}
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	servers, _ := doc[app.serversKey].(map[string]any)
	if servers == nil {
		servers = map[string]any{}
	}
	entry := map[string]any{
		"command": command,
		"args":    []string{"mcp"},
	}
	if app.stdioType {
		entry["type"] = "stdio"
	}
	servers[mcp.ServerName] = entry
	doc[app.serversKey] = servers

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	if err := fsys.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := util.WriteFile(fsys, path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
