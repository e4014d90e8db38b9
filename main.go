package main

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"time"

	"github.com/alexcesaro/log"
	"github.com/alexcesaro/log/golog"
	flags "github.com/jessevdk/go-flags"
	"github.com/vipnode/jsonrpc/jsonrpc2"
)

// Version of the binary, assigned during build.
var Version string = "dev"

// Options contains the flag options
type Options struct {
	Verbose []bool `short:"v" long:"verbose" description:"Show verbose logging."`
	Version bool   `long:"version" description:"Print version and exit."`
	Config  string `long:"config" description:"Path to an INI config file. (default: config.ini in the XDG config dirs)"`

	Serve struct {
		Bind             string  `long:"bind" description:"Address and port to listen on. (default: 127.0.0.1:8080)"`
		Store            string  `long:"store" description:"Storage driver of the kv_ methods. (persist|memory)"`
		DataDir          string  `long:"datadir" description:"Path for storing the persistent database."`
		WebSocket        string  `long:"ws" description:"WebSocket implementation. (gorilla|gobwas)"`
		Rate             float64 `long:"rate" description:"Maximum HTTP requests per second, 0 for no limit."`
		MaxContentLength int64   `long:"max-content-length" description:"Maximum size of an HTTP request body in bytes."`
		BatchLimit       int     `long:"batch-limit" description:"Number of batch elements handled concurrently."`
		HideErrors       bool    `long:"hide-errors" description:"Withhold internal error details from responses."`
		AllowOrigin      string  `long:"allow-origin" description:"Access-Control-Allow-Origin header to return."`
	} `command:"serve" description:"Serve the demo methods over HTTP and WebSocket."`

	Call struct {
		Args struct {
			Endpoint string   `positional-arg-name:"endpoint" description:"http(s):// or ws(s):// URL of the server" required:"yes"`
			Method   string   `positional-arg-name:"method" description:"Method name to call" required:"yes"`
			Params   []string `positional-arg-name:"params" description:"JSON values of the params, bare words are sent as strings"`
		} `positional-args:"yes"`
		Named     bool          `long:"named" description:"Send a single JSON object argument as named params."`
		V1        bool          `long:"v1" description:"Use JSONRPC 1.0 instead of 2.0."`
		Notify    bool          `long:"notify" description:"Send a notification and do not wait for a response."`
		Timeout   time.Duration `long:"timeout" description:"Time to wait for a response."`
		WebSocket string        `long:"ws" description:"WebSocket implementation for ws:// endpoints. (gorilla|gobwas)"`
	} `command:"call" description:"Call a method on a JSONRPC server and print the result."`
}

func defaultOptions() Options {
	options := Options{}
	options.Serve.Bind = "127.0.0.1:8080"
	options.Serve.Store = "memory"
	options.Serve.WebSocket = "gorilla"
	options.Serve.MaxContentLength = 1 << 20
	options.Serve.BatchLimit = 8
	options.Call.Timeout = 5 * time.Second
	options.Call.WebSocket = "gorilla"
	return options
}

const callUsage = `Examples:
* Call a method over HTTP:
  $ jsonrpc call http://127.0.0.1:8080/ addArray 2 3

* Call with named params over WebSocket:
  $ jsonrpc call --named ws://127.0.0.1:8080/ echoObj '{"msg": "hello"}'

* Store a value:
  $ jsonrpc call http://127.0.0.1:8080/ kv_set greeting '"hi"'
`

var logLevels = []log.Level{
	log.Warning,
	log.Info,
	log.Debug,
}

func subcommand(cmd string, options Options) error {
	switch cmd {
	case "serve":
		return runServe(options)
	case "call":
		return runCall(options)
	}
	return fmt.Errorf("unknown command: %s", cmd)
}

func main() {
	options := defaultOptions()
	parser := flags.NewParser(&options, flags.Default)
	parser.SubcommandsOptional = true
	if err := loadConfig(parser, os.Args[1:]); err != nil {
		exit(1, "failed to load config: %s\n", err)
	}
	p, err := parser.Parse()
	if err != nil {
		if p == nil {
			fmt.Println(err)
		}
		if flagErr, ok := err.(*flags.Error); ok && flagErr.Type == flags.ErrHelp && parser.Active != nil {
			// Print additional usage help when run with --help
			switch parser.Active.Name {
			case "call":
				exit(0, callUsage)
			}
		}
		return
	}

	if options.Version {
		fmt.Println(Version)
		os.Exit(0)
	}

	// Figure out the log level
	numVerbose := len(options.Verbose)
	if numVerbose >= len(logLevels) {
		numVerbose = len(logLevels) - 1
	}

	logLevel := logLevels[numVerbose]
	logWriter := os.Stderr

	SetLogger(golog.New(logWriter, logLevel))
	if logLevel == log.Debug {
		enableDebugLogging(logWriter)
	}

	cmd := "serve"
	if parser.Active != nil {
		cmd = parser.Active.Name
	}
	err = subcommand(cmd, options)
	if err == nil {
		return
	}

	if err == io.EOF {
		exit(3, "Connection closed.\n")
	}
	exit(2, "%s failed: %s\n", cmd, explain(err))
}

// explain wraps err with a hint for the operator, unless it already has one.
func explain(err error) error {
	var explained ErrExplain
	if errors.As(err, &explained) {
		return err
	}

	var rpcErr *jsonrpc2.Error
	var netErr net.Error
	var httpErr jsonrpc2.HTTPRequestError
	switch {
	case errors.Is(err, jsonrpc2.ErrTimeout):
		return ErrExplain{err, `The server did not respond in time. Try a longer --timeout?`}
	case errors.Is(err, jsonrpc2.ErrCanceled):
		return ErrExplain{err, `The call was abandoned before a response arrived. The connection may have closed.`}
	case errors.Is(err, jsonrpc2.ErrNotificationV1):
		return ErrExplain{err, `JSONRPC 1.0 has no notifications. Drop --v1 or --notify.`}
	case errors.As(err, &httpErr):
		return ErrExplain{err, `The server rejected the HTTP request. Check the endpoint URL, or slow down if the server is rate limited.`}
	case errors.As(err, &netErr):
		return ErrExplain{err, `Disconnected from server unexpectedly. Could be a connectivity issue or the server is down. Try again?`}
	case errors.As(err, &rpcErr):
		switch rpcErr.ErrorCode() {
		case jsonrpc2.ErrCodeMethodNotFound:
			return ErrExplain{err, `The server does not have this method. Method names are case sensitive, and some only exist for one JSONRPC version.`}
		case jsonrpc2.ErrCodeInvalidParams:
			return ErrExplain{err, `The params did not match the method. Check their count and types, or try --named.`}
		}
		return ErrExplain{err, fmt.Sprintf(`The server returned an error (code %d).`, rpcErr.ErrorCode())}
	}
	return ErrExplain{err, fmt.Sprintf(`Error type %T is missing an explanation. Please open an issue at https://github.com/vipnode/jsonrpc`, err)}
}

func exit(code int, format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format, args...)
	os.Exit(code)
}

// ErrExplain annotates an error with an explanation.
type ErrExplain struct {
	Cause       error
	Explanation string
}

func (err ErrExplain) Error() string {
	return fmt.Sprintf("%s\n -> %s", err.Cause, err.Explanation)
}

func (err ErrExplain) Unwrap() error {
	return err.Cause
}
