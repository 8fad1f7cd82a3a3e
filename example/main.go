package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/Gurux/gxcommon-go"
	"github.com/Gurux/gxsocket-go"
	"github.com/rifflock/lfshook"
	"github.com/sirupsen/logrus"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
	"golang.org/x/text/language"
)

var (
	host    = flag.String("h", "127.0.0.1", "Host name")
	port    = flag.Int("p", 0, "Host port")
	message = flag.String("m", "", "Send message")
	server  = flag.Bool("s", false, "Start a server instead of a client.")
	t       = flag.String("t", "", "Trace level.")
	w       = flag.Int("w", 1000, "WaitTime in milliseconds.")
	eop     = flag.String("eop", "", "End of packet marker. Messages are split by socket drain if not set.")
	lang    = flag.String("lang", "", "Used language.")
	logFile = flag.String("log", "", "Log file.")
)

func CurrentLanguage() language.Tag {
	langEnv := os.Getenv("LANG")
	if langEnv == "" {
		return language.AmericanEnglish
	}
	langEnv = strings.Split(langEnv, ".")[0]
	tag, err := language.Parse(langEnv)
	if err != nil {
		return language.AmericanEnglish
	}
	return tag
}

func newLogger() *logrus.Logger {
	log := logrus.New()
	formatter := new(prefixed.TextFormatter)
	formatter.FullTimestamp = true
	formatter.TimestampFormat = "2006-01-02 15:04:05"
	formatter.SetColorScheme(&prefixed.ColorScheme{
		PrefixStyle:    "white+h",
		TimestampStyle: "black+h"})
	log.SetFormatter(formatter)
	log.SetLevel(logrus.TraceLevel)
	if *logFile != "" {
		fileFormatter := new(prefixed.TextFormatter)
		fileFormatter.FullTimestamp = true
		fileFormatter.TimestampFormat = "2006-01-02 15:04:05"
		fileFormatter.DisableColors = true
		log.AddHook(lfshook.NewHook(lfshook.PathMap{
			logrus.TraceLevel: *logFile,
			logrus.DebugLevel: *logFile,
			logrus.InfoLevel:  *logFile,
			logrus.WarnLevel:  *logFile,
			logrus.ErrorLevel: *logFile,
		}, fileFormatter))
	}
	return log
}

func main() {
	flag.Parse()
	if *port == 0 || (!*server && *message == "") {
		flag.PrintDefaults()
		return
	}

	log := newLogger()
	cfg := gxsocket.DefaultConfig()
	cfg.Address = *host
	cfg.Port = *port
	cfg.Logger = log.WithField("prefix", "gxsocket")
	cfg.Language = CurrentLanguage()
	if *lang != "" {
		tag, err := language.Parse(*lang)
		if err != nil {
			fmt.Fprintln(os.Stderr, "error parsing language:", err)
			return
		}
		cfg.Language = tag
	}
	if *eop != "" {
		cfg.Framing = gxsocket.FramingDelimiter
		cfg.EOP = *eop
	}
	if *t != "" {
		tl, err := gxcommon.TraceLevelParse(*t)
		if err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			return
		}
		cfg.Trace = tl
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return
	}
	fmt.Printf("Settings: %s\n", cfg.Settings())

	if *server {
		runServer(&cfg)
	} else {
		runClient(&cfg)
	}
	fmt.Printf("Exit\n")
}

func runServer(cfg *gxsocket.Config) {
	srv := gxsocket.NewServer(cfg)
	srv.SetOnError(func(err error) {
		fmt.Fprintln(os.Stderr, "error:", err)
	})
	srv.Subscribe(func(s gxsocket.ConnectionState) {
		fmt.Printf("Client state change: %s\n", s.String())
		if s.IsConnected() && *message != "" {
			s.Link().SendString(*message)
		}
	})
	if err := srv.Listen(); err != nil {
		fmt.Fprintln(os.Stderr, "error returned:", err)
		return
	}
	defer func() {
		if err := srv.Close(); err != nil {
			fmt.Fprintln(os.Stderr, "close failed:", err)
		}
	}()
	if !srv.IsOnline() {
		return
	}
	fmt.Printf("Listening on %s. Press Ctrl+C to stop.\n", srv.Addr())
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	<-stop
}

func runClient(cfg *gxsocket.Config) {
	cl := gxsocket.NewClient(cfg)
	cl.SetOnError(func(err error) {
		fmt.Fprintln(os.Stderr, "error:", err)
	})
	received := make(chan gxsocket.ReceivedData, 1)
	cl.OnMessage(func(m gxsocket.ReceivedData) {
		fmt.Printf("Async data: %s\n", m.String())
		select {
		case received <- m:
		default:
		}
	})
	connected := make(chan struct{}, 1)
	cl.Subscribe(func(s gxsocket.ConnectionState) {
		fmt.Printf("Media state change : %s\n", s.MediaState().String())
		if s.IsConnected() {
			select {
			case connected <- struct{}{}:
			default:
			}
		}
	})
	if err := cl.Connect(); err != nil {
		fmt.Fprintln(os.Stderr, "error returned:", err)
		return
	}
	//Close the connection.
	defer func() {
		if err := cl.Close(); err != nil {
			fmt.Fprintln(os.Stderr, "close failed:", err)
		}
	}()

	wait := time.Duration(*w) * time.Millisecond
	select {
	case <-connected:
	case <-time.After(cfg.ConnectTimeout):
		fmt.Fprintln(os.Stderr, "connect timed out")
		return
	}
	cl.SendString(*message)
	select {
	case m := <-received:
		fmt.Printf("Reply: %s (%d bytes)\n", m.String(), m.Len())
	case <-time.After(wait):
		fmt.Println("No reply.")
	}
	fmt.Printf("Sent %d bytes, received %d bytes\n", cl.BytesSent(), cl.BytesReceived())
}
