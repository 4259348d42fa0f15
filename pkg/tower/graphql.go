package tower

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const opRequest = "request"

// graphQLRequest is the POST body of every GraphQL call.
type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

// graphQLResponse is the {data, errors} envelope of a GraphQL response.
// Errors is nil only when the key is missing or null.
type graphQLResponse[T any] struct {
	Data   *T             `json:"data"`
	Errors *GraphQLErrors `json:"errors"`
}

// resolve returns the payload of the envelope. Errors win over data: any
// errors key that is not null fails the call, even an empty list.
func (r graphQLResponse[T]) resolve() (T, error) {
	var zero T
	if r.Errors != nil {
		return zero, *r.Errors
	}
	if r.Data == nil {
		return zero, ErrEmptyResponse
	}
	return *r.Data, nil
}

// decodeGraphQLResponse decodes a raw envelope and resolves it.
func decodeGraphQLResponse[T any](body []byte) (T, error) {
	var resp graphQLResponse[T]
	if err := json.Unmarshal(body, &resp); err != nil {
		var zero T
		return zero, fmt.Errorf("failed to parse graphql response: %w", err)
	}
	return resp.resolve()
}

// query sends a GraphQL query to the instance's current endpoint and returns
// the decoded data payload.
func query[T any](ctx context.Context, c *Client, q string, variables map[string]any) (T, error) {
	var zero T

	endpoint, err := c.instance.Endpoint(ctx)
	if err != nil {
		return zero, fmt.Errorf("failed to get endpoint of plugin %s: %w", c.instanceName, err)
	}

	payload, err := json.Marshal(graphQLRequest{Query: q, Variables: variables})
	if err != nil {
		return zero, fmt.Errorf("failed to encode graphql request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return zero, fmt.Errorf("failed to create graphql request: %w", err)
	}
	c.setJSONHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return zero, fmt.Errorf("graphql request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return zero, fmt.Errorf("failed to read graphql response: %w", err)
	}

	if !isSuccess(resp.StatusCode) {
		c.logger.Debug("GraphQL request failed",
			"instance", c.instanceName,
			"status", resp.StatusCode,
			"body", string(body))
		return zero, &RequestError{Op: opRequest, StatusCode: resp.StatusCode, Body: string(body)}
	}

	data, err := decodeGraphQLResponse[T](body)
	if err != nil {
		c.logger.Debug("GraphQL response rejected",
			"instance", c.instanceName,
			"error", err)
		return zero, err
	}
	return data, nil
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}
