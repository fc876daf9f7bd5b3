package api

// api exposes the book operations over HTTP with JSON bodies. It owns status
// code mapping (InvalidInputError is a 400, NotFoundError a 404, anything
// else a 500) and per-request logging, and delegates everything about books
// themselves to books.Service.
