// Package dwellosdk is the Go client for the Dwello API and the home of its
// wire types. The server encodes the same structs the client decodes.
//
// Basic usage:
//
//	c := dwellosdk.NewClient("http://localhost:8080")
//	s, err := c.Login(ctx, "a@b.com", "secret1")
//	if err != nil {
//		return err
//	}
//	me, err := s.Me(ctx)
//
// Every failed call returns an *APIError carrying the status code, the
// error_message and any per-field validation errors.
package dwellosdk
