// Package logging configures the process-wide slog logger.
//
// Records are JSON. They go to stderr and, when a file is configured, to a
// lumberjack-rotated file as well. Every record carries the service name
// and the run ID:
//
//	closer, err := logging.Setup(logging.Options{
//	    Service: "zipadeedoodah",
//	    RunID:   uuid.NewString(),
//	    Level:   settings.LogLevel,
//	    File:    settings.LogFile,
//	})
//	if err != nil {
//	    return err
//	}
//	defer closer.Close()
//
// New builds the same logger without installing it as the default.
package logging
