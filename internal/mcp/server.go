package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"notepad-core/internal/service"
)

const (
	// ServerName is reported to MCP clients during initialize.
	ServerName = "notepad-core"
)

// ToolServer exposes the text file operations as MCP tools.
type ToolServer struct {
	service service.TextFileService
	recent  *service.RecentFilesService
	workDir *service.WorkDirService
	logger  *zap.SugaredLogger
	mcp     *server.MCPServer
	tools   []string
}

// Option customises a ToolServer.
type Option func(*ToolServer)

// WithRecentFiles adds the recent-files tools. rename_file also keeps the list in step.
func WithRecentFiles(recent *service.RecentFilesService) Option {
	return func(ts *ToolServer) {
		ts.recent = recent
	}
}

// WithWorkDir adds the working directory tools.
func WithWorkDir(workDir *service.WorkDirService) Option {
	return func(ts *ToolServer) {
		ts.workDir = workDir
	}
}

// NewToolServer creates a ToolServer with every tool registered.
func NewToolServer(svc service.TextFileService, version string, logger *zap.SugaredLogger, opts ...Option) *ToolServer {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	ts := &ToolServer{
		service: svc,
		logger:  logger,
		mcp: server.NewMCPServer(
			ServerName,
			version,
			server.WithToolCapabilities(false),
		),
	}
	for _, opt := range opts {
		opt(ts)
	}
	ts.addTools()
	if ts.recent != nil {
		ts.addRecentFileTools()
	}
	if ts.workDir != nil {
		ts.addWorkDirTools()
	}
	return ts
}

func (ts *ToolServer) addTools() {
	ts.addTool(mcp.NewTool(service.OpReadTextFile,
		mcp.WithDescription("Read the whole contents of a UTF-8 text file"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Absolute path of the file to read"),
		),
	), ts.handleReadTextFile)

	ts.addTool(mcp.NewTool(service.OpWriteTextFile,
		mcp.WithDescription("Replace the contents of a text file, creating it and its parent directories if needed"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Absolute path of the file to write"),
		),
		mcp.WithString("content",
			mcp.Required(),
			mcp.Description("New contents of the file"),
		),
	), ts.handleWriteTextFile)

	ts.addTool(mcp.NewTool(service.OpListTextFiles,
		mcp.WithDescription("List the .md, .markdown and .txt files directly inside a directory, most recently modified first"),
		mcp.WithString("dirPath",
			mcp.Required(),
			mcp.Description("Directory to list"),
		),
	), ts.handleListTextFiles)

	ts.addTool(mcp.NewTool(service.OpDeleteFile,
		mcp.WithDescription("Delete a file. Directories are refused"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Absolute path of the file to delete"),
		),
	), ts.handleDeleteFile)

	ts.addTool(mcp.NewTool(service.OpFileExists,
		mcp.WithDescription("Report whether a file or directory exists at a path"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path to check"),
		),
	), ts.handleFileExists)

	ts.addTool(mcp.NewTool(service.OpRenameFile,
		mcp.WithDescription("Rename a file. Fails when the new path already exists"),
		mcp.WithString("oldPath",
			mcp.Required(),
			mcp.Description("Current path of the file"),
		),
		mcp.WithString("newPath",
			mcp.Required(),
			mcp.Description("Path to move the file to"),
		),
	), ts.handleRenameFile)

	ts.addTool(mcp.NewTool(service.OpGreet,
		mcp.WithDescription("Return a greeting, useful to check the server is alive"),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Name of the person to greet"),
		),
	), ts.handleGreet)
}

func (ts *ToolServer) addRecentFileTools() {
	ts.addTool(mcp.NewTool(service.OpLoadRecentFiles,
		mcp.WithDescription("List the recently opened documents, newest first"),
	), ts.handleLoadRecentFiles)

	ts.addTool(mcp.NewTool(service.OpTouchRecentFile,
		mcp.WithDescription("Move a document to the front of the recent list"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Absolute path of the document"),
		),
	), ts.handleTouchRecentFile)

	ts.addTool(mcp.NewTool(service.OpRemoveRecentFile,
		mcp.WithDescription("Drop an entry from the recent list"),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Id of the entry to remove"),
		),
	), ts.handleRemoveRecentFile)
}

func (ts *ToolServer) addWorkDirTools() {
	ts.addTool(mcp.NewTool(service.OpGetWorkDir,
		mcp.WithDescription("Return the saved working directory, empty when unset"),
	), ts.handleGetWorkDir)

	ts.addTool(mcp.NewTool(service.OpSetWorkDir,
		mcp.WithDescription("Save the working directory"),
		mcp.WithString("dir",
			mcp.Required(),
			mcp.Description("Directory to save"),
		),
	), ts.handleSetWorkDir)
}

func (ts *ToolServer) addTool(tool mcp.Tool, handler server.ToolHandlerFunc) {
	ts.mcp.AddTool(tool, handler)
	ts.tools = append(ts.tools, tool.Name)
}

// ToolNames returns the registered tool names in registration order.
func (ts *ToolServer) ToolNames() []string {
	return append([]string(nil), ts.tools...)
}

// Serve speaks MCP over in/out until ctx is done or in is closed.
func (ts *ToolServer) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	ts.logger.Infow("MCP server starting", "name", ServerName, "tools", ts.tools)
	return server.NewStdioServer(ts.mcp).Listen(ctx, in, out)
}

func (ts *ToolServer) handleReadTextFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := ts.service.ReadTextFile(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(content), nil
}

func (ts *ToolServer) handleWriteTextFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := request.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := ts.service.WriteTextFile(ctx, path, content); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Wrote %d bytes to %s", len(content), path)), nil
}

func (ts *ToolServer) handleListTextFiles(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	dirPath, err := request.RequireString("dirPath")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	files, err := ts.service.ListTextFiles(ctx, dirPath)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(files)
}

func (ts *ToolServer) handleGreet(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(ts.service.Greet(name)), nil
}

func (ts *ToolServer) handleDeleteFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := ts.service.DeleteFile(ctx, path); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Deleted %s", path)), nil
}

func (ts *ToolServer) handleFileExists(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	exists, err := ts.service.FileExists(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(strconv.FormatBool(exists)), nil
}

func (ts *ToolServer) handleRenameFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	oldPath, err := request.RequireString("oldPath")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	newPath, err := request.RequireString("newPath")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := ts.service.RenameFile(ctx, oldPath, newPath); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if ts.recent != nil {
		if _, err := ts.recent.Rename(ctx, oldPath, newPath); err != nil {
			ts.logger.Warnw("recent files not updated after rename", "from", oldPath, "to", newPath, "error", err)
		}
	}
	return mcp.NewToolResultText(fmt.Sprintf("Renamed %s to %s", oldPath, newPath)), nil
}

func (ts *ToolServer) handleLoadRecentFiles(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	files, err := ts.recent.Load(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(files)
}

func (ts *ToolServer) handleTouchRecentFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	files, err := ts.recent.Touch(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(files)
}

func (ts *ToolServer) handleRemoveRecentFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	files, err := ts.recent.Remove(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(files)
}

func (ts *ToolServer) handleGetWorkDir(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	dir, err := ts.workDir.Get(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(dir), nil
}

func (ts *ToolServer) handleSetWorkDir(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	dir, err := request.RequireString("dir")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := ts.workDir.Set(ctx, dir); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Working directory set to %s", dir)), nil
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
