// Package einkclient is the main entry point for creating remote e-ink clients.
//
// New normalizes the configured URLs and, when only a base URL is known,
// looks for the server's specification at {baseURL}/openapi.json and then
// {baseURL}/swagger.json:
//
//	cli, err := einkclient.NewWithURL(ctx, "eink.local:8080")
//	if err != nil { log.Fatal(err) }
//
//	display, err := cli.Displays().Get(ctx, "kitchen")
//
// LoadConfig reads the same settings from ~/.eink/config.yml:
//
//	base_url: http://eink.local:8080
//	http_timeout: 10s
//	log_level: debug
//	debug: true
package einkclient
