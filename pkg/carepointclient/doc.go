// Package carepointclient provides the entry point for constructing a
// Carepoint API client that implements the carepoint.Client interface.
//
// It wires the credential store, the retrying transport, the single-flight
// token refresher and the resource clients defined by the carepoint package.
//
// Quick start
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/carepoint-health/carepoint-client/pkg/carepoint"
//	  "github.com/carepoint-health/carepoint-client/pkg/carepointclient"
//	)
//
//	func example() {
//	  ctx := context.Background()
//
//	  // Hosted backend (or CAREPOINT_API_BASE_URL), credentials in memory.
//	  cli, err := carepointclient.New(ctx, &carepoint.Config{})
//	  if err != nil { log.Fatal(err) }
//	  defer cli.Close()
//
//	  if _, err := cli.Auth().Login(ctx, &carepoint.LoginRequest{
//	    Email:    "ada@example.com",
//	    Password: "secret",
//	  }); err != nil {
//	    log.Fatal(err)
//	  }
//
//	  today, err := cli.Medications().Today(ctx)
//	  if err != nil { log.Fatal(err) }
//	  _ = today
//	}
//
// # Persisting sessions
//
// Set Config.Store to keep credentials between runs:
//
//	cli, err := carepointclient.New(ctx, &carepoint.Config{
//	  Store: &carepoint.StoreConfig{Type: carepoint.StoreTypeSQLite},
//	})
//
// File and SQLite stores default to ~/.carepoint. Redis and NATS stores need
// their own connection settings.
//
// # Helpers
//
// NewWithEndpoint, NewWithStore and NewWithSession cover the common cases
// without building a Config by hand.
package carepointclient
