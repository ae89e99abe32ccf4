package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/Quantumben/devdb-vscode/internal/engine"
)

func (s *Server) registerTools() {
	s.mcp.AddTool(mcp.NewTool("list_connections",
		mcp.WithDescription("List the validated database connections discovered in this workspace"),
	), s.handleListConnections)

	s.mcp.AddTool(mcp.NewTool("select_connection",
		mcp.WithDescription("Select the connection used by subsequent table operations"),
		mcp.WithString("id", mcp.Description("Connection identity (file path for sqlite, name for server databases)"), mcp.Required()),
	), s.handleSelectConnection)

	s.mcp.AddTool(mcp.NewTool("ping_connection",
		mcp.WithDescription("Health-check the selected connection"),
	), s.handlePingConnection)

	s.mcp.AddTool(mcp.NewTool("list_tables",
		mcp.WithDescription("List the tables of the selected connection"),
	), s.handleListTables)

	s.mcp.AddTool(mcp.NewTool("describe_table",
		mcp.WithDescription("Get column metadata (name, type, nullability, primary keys) for a table"),
		mcp.WithString("table", mcp.Description("Table name"), mcp.Required()),
	), s.handleDescribeTable)

	s.mcp.AddTool(mcp.NewTool("get_table_data",
		mcp.WithDescription("Fetch the first page of rows from a table. Returns a cursorId when more rows remain."),
		mcp.WithString("table", mcp.Description("Table name"), mcp.Required()),
		mcp.WithNumber("pageSize", mcp.Description("Rows per page (default 50)")),
	), s.handleGetTableData)

	s.mcp.AddTool(mcp.NewTool("fetch_more_rows",
		mcp.WithDescription("Continue a paged table read started by get_table_data"),
		mcp.WithString("cursorId", mcp.Description("Cursor id returned by get_table_data"), mcp.Required()),
	), s.handleFetchMoreRows)

	s.mcp.AddTool(mcp.NewTool("apply_mutations",
		mcp.WithDescription("Apply a batch of row-level updates/deletes to a table, keyed by primary key"),
		mcp.WithString("table", mcp.Description("Table name"), mcp.Required()),
		mcp.WithString("mutations", mcp.Description(`JSON array of {"type":"update|delete","rowKey":{...},"changes":{...}}`), mcp.Required()),
	), s.handleApplyMutations)
}

func (s *Server) handleListConnections(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	conns, err := s.inspector.Connections(ctx)
	if err != nil {
		return nil, err
	}
	return jsonResult(conns)
}

func (s *Server) handleSelectConnection(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("id", "")
	if id == "" {
		return nil, fmt.Errorf("id is required")
	}
	if err := s.inspector.SelectConnection(ctx, id); err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("selected connection %q", id)), nil
}

func (s *Server) handlePingConnection(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.inspector.Ping(ctx) {
		return textResult("ok"), nil
	}
	return textResult("unreachable"), nil
}

func (s *Server) handleListTables(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tables, err := s.inspector.Tables(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	return jsonResult(tables)
}

func (s *Server) handleDescribeTable(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	table := req.GetString("table", "")
	if table == "" {
		return nil, fmt.Errorf("table is required")
	}
	cols, err := s.inspector.Describe(ctx, table)
	if err != nil {
		return nil, fmt.Errorf("describe table: %w", err)
	}
	return jsonResult(cols)
}

func (s *Server) handleGetTableData(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	table, _ := args["table"].(string)
	pageSize := int(getFloat(args, "pageSize", 50))
	if table == "" {
		return nil, fmt.Errorf("table is required")
	}

	cursorID, page, err := s.inspector.TableData(ctx, table, pageSize)
	if err != nil {
		return nil, fmt.Errorf("get table data: %w", err)
	}
	return jsonResult(struct {
		CursorID string          `json:"cursorId,omitempty"`
		Page     *engine.RowPage `json:"page"`
	}{CursorID: cursorID, Page: page})
}

func (s *Server) handleFetchMoreRows(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cursorID := req.GetString("cursorId", "")
	if cursorID == "" {
		return nil, fmt.Errorf("cursorId is required")
	}
	page, err := s.inspector.FetchMore(ctx, cursorID)
	if err != nil {
		return nil, fmt.Errorf("fetch more rows: %w", err)
	}
	return jsonResult(page)
}

func (s *Server) handleApplyMutations(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	table, _ := args["table"].(string)
	rawMutations, _ := args["mutations"].(string)
	if table == "" || rawMutations == "" {
		return nil, fmt.Errorf("table and mutations are required")
	}

	var mutations []engine.Mutation
	if err := parseJSON(rawMutations, &mutations); err != nil {
		return nil, fmt.Errorf("parse mutations: %w", err)
	}

	result, err := s.inspector.Mutate(ctx, table, mutations)
	if err != nil {
		return nil, fmt.Errorf("apply mutations: %w", err)
	}
	return jsonResult(result)
}
