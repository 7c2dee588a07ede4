// Package eink provides a client for remote e-ink display servers whose REST
// API is described by an OpenAPI or Swagger document.
//
// # Overview
//
// An APIClient loads the server's specification once and executes the
// operations it documents. Records (Display, Image, ImageTransformer) are
// small values holding the shared APIClient and their identifiers; they never
// cache server state, so every accessor performs one request. Collections
// (DisplayCollection, ImageCollection, ImageTransformerCollection) list, look
// up and modify their members.
//
// Getting a client
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/fivetwenty-io/eink-client/pkg/einkclient"
//	)
//
//	func example() {
//	  ctx := context.Background()
//	  cli, err := einkclient.NewWithURL(ctx, "http://eink.local:8080")
//	  if err != nil { log.Fatal(err) }
//
//	  displays, err := cli.Displays().List(ctx)
//	  if err != nil { log.Fatal(err) }
//
//	  for _, display := range displays {
//	    img, err := display.CurrentImage(ctx)
//	    if err != nil { log.Fatal(err) }
//	    if img == nil { continue } // nothing shown
//	  }
//	}
//
// # Status handling
//
// Every operation routes its response through HandleResponse: 200 and 201
// are success, 404 is not-found and everything else is an error. Lookups
// (Get, CurrentImage) treat 404 as absence and return nil without an error.
// Other failures are *StatusError values; use IsNotFound or errors.As to
// inspect them.
//
// # Images by record or identifier
//
// Operations naming an image accept an ImageRef, so an Image record and a
// bare ImageID are interchangeable:
//
//	_ = display.SetCurrentImage(ctx, eink.ImageID("456"))
//	_ = display.Images().Delete(ctx, img)
//
// # Interceptors
//
// Config.RequestInterceptors and Config.ResponseInterceptors run around every
// operation. HeaderInterceptor, LoggingInterceptor and the MetricsCollector
// interceptors cover the common cases.
package eink
