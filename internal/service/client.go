package service

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
)

// StatementClient calls a StatementService over HTTP.
type StatementClient struct {
	render   *connect.Client[RenderRequest, RenderResponse]
	describe *connect.Client[DescribeRequest, DescribeResponse]
}

func NewStatementClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *StatementClient {
	opts = append([]connect.ClientOption{connect.WithCodec(jsonCodec{})}, opts...)
	return &StatementClient{
		render:   connect.NewClient[RenderRequest, RenderResponse](httpClient, baseURL+StatementServiceRenderProcedure, opts...),
		describe: connect.NewClient[DescribeRequest, DescribeResponse](httpClient, baseURL+StatementServiceDescribeProcedure, opts...),
	}
}

func (c *StatementClient) Render(ctx context.Context, req *RenderRequest) (*RenderResponse, http.Header, error) {
	resp, err := c.render.CallUnary(ctx, connect.NewRequest(req))
	if err != nil {
		return nil, nil, err
	}
	return resp.Msg, resp.Header(), nil
}

func (c *StatementClient) Describe(ctx context.Context, req *DescribeRequest) (*DescribeResponse, error) {
	resp, err := c.describe.CallUnary(ctx, connect.NewRequest(req))
	if err != nil {
		return nil, err
	}
	return resp.Msg, nil
}

// MetadataClient calls a MetadataService over HTTP.
type MetadataClient struct {
	listAggregates *connect.Client[ListAggregatesRequest, ListAggregatesResponse]
	listPaths      *connect.Client[ListPathsRequest, ListPathsResponse]
}

func NewMetadataClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *MetadataClient {
	opts = append([]connect.ClientOption{connect.WithCodec(jsonCodec{})}, opts...)
	return &MetadataClient{
		listAggregates: connect.NewClient[ListAggregatesRequest, ListAggregatesResponse](httpClient, baseURL+MetadataServiceListAggregatesProcedure, opts...),
		listPaths:      connect.NewClient[ListPathsRequest, ListPathsResponse](httpClient, baseURL+MetadataServiceListPathsProcedure, opts...),
	}
}

func (c *MetadataClient) ListAggregates(ctx context.Context) (*ListAggregatesResponse, error) {
	resp, err := c.listAggregates.CallUnary(ctx, connect.NewRequest(&ListAggregatesRequest{}))
	if err != nil {
		return nil, err
	}
	return resp.Msg, nil
}

func (c *MetadataClient) ListPaths(ctx context.Context, aggregate string) (*ListPathsResponse, error) {
	resp, err := c.listPaths.CallUnary(ctx, connect.NewRequest(&ListPathsRequest{Aggregate: aggregate}))
	if err != nil {
		return nil, err
	}
	return resp.Msg, nil
}
