// Package importer moves newly discovered pictures into the library.
//
// An import runs in three steps. The scanner groups the files under a source
// directory into pictures. The Planner drops pictures whose filename is
// already catalogued under the library root and assigns each remaining
// picture a destination of the form
//
//	{library}/{YYYY}/{YYYY}-{MM}-{DD}/{filename}
//
// derived from its capture time. The Executor then copies the primary file and
// its raw companion with bounded concurrency, never overwriting an existing
// destination, and inserts every picture that was not lost to a failure in a
// single catalog transaction.
//
// Re-running an import over the same source is a no-op: every picture is
// found in the existence index and nothing is planned.
//
// AddDirectory catalogues pictures where they are. It skips only pictures
// whose exact path is catalogued, so equal filenames in sibling folders are
// all added.
package importer
