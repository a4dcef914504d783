package ipc

import (
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"time"
)

// Client provides RPC access to the daemon.
type Client struct {
	conn   net.Conn
	client *rpc.Client
}

// Dial connects to the IPC server at the given socket path.
func Dial(path string) (*Client, error) {
	conn, err := net.DialTimeout("unix", path, 2*time.Second)
	if err != nil {
		return nil, err
	}
	rpcClient := rpc.NewClientWithCodec(jsonrpc.NewClientCodec(conn))
	return &Client{conn: conn, client: rpcClient}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	if c.client != nil {
		_ = c.client.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// Ping probes daemon liveness.
func (c *Client) Ping() (*PingResponse, error) {
	var resp PingResponse
	if err := c.client.Call("Bracket.Ping", PingRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Status retrieves daemon status.
func (c *Client) Status() (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.client.Call("Bracket.Status", StatusRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Submit creates a fusion job for a listing's assets.
func (c *Client) Submit(req SubmitRequest) (*SubmitResponse, error) {
	var resp SubmitResponse
	if err := c.client.Call("Bracket.Submit", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Poll reconciles one job with the remote processor.
func (c *Client) Poll(req PollRequest) (*PollResponse, error) {
	var resp PollResponse
	if err := c.client.Call("Bracket.Poll", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Retry resubmits one failed job.
func (c *Client) Retry(req RetryRequest) (*RetryResponse, error) {
	var resp RetryResponse
	if err := c.client.Call("Bracket.Retry", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// MarkRetry flags a failed job for later resubmission.
func (c *Client) MarkRetry(req MarkRetryRequest) (*MarkRetryResponse, error) {
	var resp MarkRetryResponse
	if err := c.client.Call("Bracket.MarkRetry", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RetryBatch resubmits every job the selector matches.
func (c *Client) RetryBatch(req RetryBatchRequest) (*RetryBatchResponse, error) {
	var resp RetryBatchResponse
	if err := c.client.Call("Bracket.RetryBatch", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Cancel withdraws a job that has not started processing.
func (c *Client) Cancel(req CancelRequest) (*CancelResponse, error) {
	var resp CancelResponse
	if err := c.client.Call("Bracket.Cancel", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// JobList returns jobs filtered by status or listing.
func (c *Client) JobList(req JobListRequest) (*JobListResponse, error) {
	var resp JobListResponse
	if err := c.client.Call("Bracket.JobList", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// JobDescribe returns one job with its audit trail.
func (c *Client) JobDescribe(id int64) (*JobDescribeResponse, error) {
	var resp JobDescribeResponse
	if err := c.client.Call("Bracket.JobDescribe", JobDescribeRequest{ID: id}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Transition moves a listing through the production pipeline.
func (c *Client) Transition(req TransitionRequest) (*TransitionResponse, error) {
	var resp TransitionResponse
	if err := c.client.Call("Bracket.Transition", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// QCQueue retrieves the review queue in priority order.
func (c *Client) QCQueue() (*QCQueueResponse, error) {
	var resp QCQueueResponse
	if err := c.client.Call("Bracket.QCQueue", QCQueueRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Events retrieves a listing's audit trail.
func (c *Client) Events(listingID int64) (*EventsResponse, error) {
	var resp EventsResponse
	if err := c.client.Call("Bracket.Events", EventsRequest{ListingID: listingID}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// TestNotification triggers a notification test via the daemon.
func (c *Client) TestNotification() (*TestNotificationResponse, error) {
	var resp TestNotificationResponse
	if err := c.client.Call("Bracket.TestNotification", TestNotificationRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// LogTail reads from the daemon log file.
func (c *Client) LogTail(req LogTailRequest) (*LogTailResponse, error) {
	var resp LogTailResponse
	if err := c.client.Call("Bracket.LogTail", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
