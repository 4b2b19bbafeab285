// Package salesking is a client for the SalesKing REST API.
//
// Resource types are not compiled in. Each entity and collection reads the
// schema document of its resource type at runtime, validates every field
// written to it, and discovers its endpoints through the document's links.
//
//	client, err := salesking.NewClient(salesking.Config{
//		BaseURL:  "https://demo.salesking.eu",
//		User:     "user@example.com",
//		Password: "secret",
//	})
//	if err != nil {
//		return err
//	}
//
//	contact, _ := client.Object("client")
//	if err := contact.Set("organisation", "Example Inc."); err != nil {
//		return err
//	}
//	if _, err := contact.Save(ctx); err != nil {
//		return err
//	}
//
//	clients, _ := client.Collection("client", salesking.WithAutoload(true))
//	clients.AddFilter("q", "Example")
//	if _, err := clients.Load(ctx); err != nil {
//		return err
//	}
//
// Every error returned by this package is an *Error carrying one of the Code
// constants; errors.Is matches the corresponding Err sentinel.
package salesking
