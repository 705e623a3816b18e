// Package testutil provides shared fakes and fixtures for tests of the search pipeline.
//
//   - MockStore: testify mock of vector.Store
//   - MockTranscriber: testify mock of transcript.Transcriber
//   - Fixtures: a sample lecture transcript, WAV and transcription files on disk
//
// Packages imported by testutil cannot use it from their own tests.
package testutil
