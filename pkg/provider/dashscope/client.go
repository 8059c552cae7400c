/*
dashscope implements an API client for the Alibaba Cloud DashScope
compatible-mode endpoint, using the native Gemini protocol passthrough
for image generation.
https://help.aliyun.com/zh/model-studio/
*/
package dashscope

import (
	// Packages
	imagegen "github.com/dragon84867/qwen-code-examples"
	client "github.com/mutablelogic/go-client"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

type Client struct {
	*client.Client
}

var _ imagegen.Generator = (*Client)(nil)

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	EndPoint = "https://dashscope.aliyuncs.com/compatible-mode/v1"
)

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// New creates a new DashScope API client with the given API key. The
// endpoint and timeout can be overridden with client options; by default
// requests never time out.
func New(apiKey string, opts ...client.ClientOpt) (*Client, error) {
	if apiKey == "" {
		return nil, imagegen.ErrMissingConfiguration.With("api key is required")
	}
	opts = append([]client.ClientOpt{
		client.OptEndpoint(EndPoint),
		client.OptTimeout(0),
	}, opts...)
	opts = append(opts, client.OptReqToken(client.Token{Scheme: client.Bearer, Value: apiKey}))
	if c, err := client.New(opts...); err != nil {
		return nil, err
	} else {
		return &Client{c}, nil
	}
}
