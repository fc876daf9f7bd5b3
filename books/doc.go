package books

// books defines the Book record the application persists, the monotonic id
// Sequence that names each record, and the Service composing the two into
// the four exposed operations: get, add, update, and delete. All state lives
// in a storage.KeyValue; this package decides what the bytes mean.
