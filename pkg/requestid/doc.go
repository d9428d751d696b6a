// Package requestid correlates log records of one HTTP request.
//
// Middleware assigns every request an id, taken from a valid X-Request-ID
// header or generated as a UUIDv7, and echoes it back in the response.
// LoggerExtractor plugs the id into logger.WithContextExtractors:
//
//	log := logger.New(logger.WithContextExtractors(requestid.LoggerExtractor))
//	handler := requestid.Middleware(router)
package requestid
