package main

import (
	"log"

	"kitten-defense/internal/database"
	"kitten-defense/internal/eventlog"
	"kitten-defense/internal/game"
	"kitten-defense/internal/server"
)

// sinks are the places capture events and ledger entries end up. Every sink
// that touches a socket, the database or a file sits behind a queue, so
// the tick loop never waits on I/O.
type sinks struct {
	broadcast    *game.AsyncNotifier
	recorder     *database.Recorder
	captureLog   *eventlog.CaptureLog
	captureQueue *game.AsyncNotifier
	notifier     game.Notifier
	logger       *log.Logger
}

func newSinks(hub *server.Hub, db *database.DB, matchID, eventDir string, logger *log.Logger) *sinks {
	s := &sinks{
		broadcast:  game.NewAsyncNotifier(server.NewCaptureBroadcaster(hub), 256, logger),
		recorder:   database.NewRecorder(db, matchID, 1024, logger),
		captureLog: eventlog.NewCaptureLog(eventDir, matchID, logger),
		logger:     logger,
	}
	s.captureQueue = game.NewAsyncNotifier(s.captureLog, 256, logger)
	s.notifier = game.NewMultiNotifier(logger, s.broadcast, s.recorder, s.captureQueue)
	return s
}

// Close drains every queue, then closes the capture log behind its queue.
func (s *sinks) Close() {
	s.broadcast.Close()
	s.captureQueue.Close()
	if err := s.captureLog.Close(); err != nil {
		s.logger.Printf("Capture log close failed: %v", err)
	}
	s.recorder.Close()

	if n := s.broadcast.Dropped() + s.captureQueue.Dropped() + s.recorder.Dropped(); n > 0 {
		s.logger.Printf("%d capture or ledger records were dropped", n)
	}
}
