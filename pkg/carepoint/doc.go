// Package carepoint provides types, interfaces, and helpers for working with
// the CarePoint health backend.
//
// # Overview
//
// The carepoint package defines the domain types (e.g., User, Medication,
// HealthRecord, EmergencyContact) and the interfaces for resource-oriented
// clients (AuthClient, MedicationsClient, HealthRecordsClient,
// EmergencyContactsClient). A concrete implementation is provided by the
// carepointclient package, which wires configuration, transport, token
// refresh, and credential storage.
//
// Getting a client
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
//	  cli, err := carepointclient.New(ctx, &carepoint.Config{
//	    Store: &carepoint.StoreConfig{Type: carepoint.StoreTypeFile, Path: "credentials.yml"},
//	  })
//	  if err != nil { log.Fatal(err) }
//
//	  if _, err := cli.Auth().Login(ctx, &carepoint.LoginRequest{Email: "a@b.c", Password: "pw"}); err != nil {
//	    log.Fatal(err)
//	  }
//
//	  today, err := cli.Medications().Today(ctx)
//	  if err != nil { log.Fatal(err) }
//	  _ = today
//	}
//
// # Errors
//
// Every failure surfaces as an *APIError carrying a Kind. Helpers such as
// IsAuthenticationRequired, IsNotFound, and IsTimeout branch on the common
// cases, and errors.Is works against the exported sentinels.
//
// Read requests are forgiving: a GET without credentials, or one answered with
// 404, returns an empty result rather than an error. Mutations always report
// failures.
//
// # Sessions
//
// Access tokens expire. When the backend answers 401, the client refreshes the
// access token once (concurrent callers share a single refresh) and replays the
// request. If the refresh fails, stored credentials are cleared and callers get
// an authentication error.
package carepoint
