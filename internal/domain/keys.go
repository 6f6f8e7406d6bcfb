package domain

// KeyPrefix namespaces every Redis key this service reads or writes.
// Ingestion uses the same prefix for scene documents and FT indexes.
const KeyPrefix = "scenedex:"
