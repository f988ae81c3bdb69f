// Package client is a Go client for the gateway's HTTP API.
//
// A typical conversation:
//
//	c := client.New("http://localhost:3001")
//	id, err := c.CreateSession(ctx, apiKey)
//	if err != nil {
//		return err
//	}
//	defer c.DeleteSession(ctx, id)
//
//	err = c.StreamMessage(ctx, id, "Hello", "", func(f relay.Frame) error {
//		fmt.Print(f.Content)
//		return nil
//	})
//
// Non-2xx responses are returned as *APIError.
package client
