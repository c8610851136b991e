// Command pokersrv runs the mental-poker coordinator: it terminates player
// websocket connections, verifies every proof-carrying submission against
// its Groth16 verification key, and dispatches state transitions into the
// room package.
package main

import (
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/vctt94/pokerbisonrelay/pkg/logging"
	"github.com/vctt94/pokerbisonrelay/pkg/proof"
	"github.com/vctt94/pokerbisonrelay/pkg/room"
	"github.com/vctt94/pokerbisonrelay/pkg/server"
)

func main() {
	var (
		dbPath        string
		host          string
		port          int
		portFile      string
		debugLevel    string
		keyDir        string
		workers       int64
		minPlayers    int
		maxPlayers    int
		smallBlind    int64
		bigBlind      int64
		startingChips int64
		turnTimeout   time.Duration
		phaseTimeout  time.Duration
	)
	flag.StringVar(&dbPath, "db", "", "Path to SQLite database file (created if missing)")
	flag.StringVar(&host, "host", "127.0.0.1", "Host to listen on")
	flag.IntVar(&port, "port", 0, "Port to listen on (0 for random free port)")
	flag.StringVar(&portFile, "portfile", "", "If set, write selected port to this file")
	flag.StringVar(&debugLevel, "debuglevel", "info", "Logging level: trace, debug, info, warn, error")
	flag.StringVar(&keyDir, "keydir", "", "Directory holding Groth16 verification keys (<circuit>.vk)")
	flag.Int64Var(&workers, "verifyworkers", 2, "Bounded concurrent proof-verification worker count")
	flag.IntVar(&minPlayers, "minplayers", 2, "Minimum seated+ready players required to start a hand")
	flag.IntVar(&maxPlayers, "maxplayers", 9, "Maximum seats per room")
	flag.Int64Var(&smallBlind, "smallblind", 1, "Small blind amount")
	flag.Int64Var(&bigBlind, "bigblind", 2, "Big blind amount")
	flag.Int64Var(&startingChips, "startingchips", 200, "Starting chip stack per seated player")
	flag.DurationVar(&turnTimeout, "turntimeout", room.DefaultTurnTimeout, "Per-player action timeout")
	flag.DurationVar(&phaseTimeout, "phasetimeout", room.DefaultPhaseTimeout, "Per-phase timeout for shuffle turns and showdown reveals (unmask phases are not timed)")
	flag.Parse()

	if dbPath == "" {
		dbPath = filepath.Join(os.TempDir(), "pokerbisonrelay.sqlite")
	}

	logBackend, err := logging.NewLogBackend(logging.LogConfig{DebugLevel: debugLevel})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logging: %v\n", err)
		os.Exit(1)
	}
	log := logBackend.Logger("MAIN")

	db, err := server.NewDatabase(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init db: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	verifier := proof.NewVerifier(logBackend.Logger("VERIFIER"), workers)
	if keyDir != "" {
		if err := verifier.LoadKeys(keyDir); err != nil {
			fmt.Fprintf(os.Stderr, "failed to load verification keys: %v\n", err)
			os.Exit(1)
		}
	} else {
		log.Warnf("main: -keydir not set, proof verification is disabled")
	}

	collector, err := server.NewResourceCollector(logBackend.Logger("RESOURCE"), workers, workers*4)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init resource collector: %v\n", err)
		os.Exit(1)
	}
	stopCollector := make(chan struct{})
	defer close(stopCollector)
	go collector.Run(stopCollector, 30*time.Second)

	srv := server.NewServer(server.Config{
		RoomDefaults: room.Config{
			MinPlayers:    minPlayers,
			MaxPlayers:    maxPlayers,
			SmallBlind:    smallBlind,
			BigBlind:      bigBlind,
			StartingChips: startingChips,
			TurnTimeout:   turnTimeout,
			PhaseTimeout:  phaseTimeout,
		},
	}, logBackend, db, verifier, collector)
	defer srv.Close()

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", srv.ServeWS)

	lis, err := net.Listen("tcp", fmt.Sprintf("%s:%d", host, port))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to listen: %v\n", err)
		os.Exit(1)
	}

	if portFile != "" {
		_, p, _ := net.SplitHostPort(lis.Addr().String())
		_ = os.WriteFile(portFile, []byte(p), 0600)
	}

	log.Infof("main: listening on %s", lis.Addr())
	if err := http.Serve(lis, mux); err != nil {
		fmt.Fprintf(os.Stderr, "http serve error: %v\n", err)
		os.Exit(1)
	}
}
