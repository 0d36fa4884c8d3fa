// Package async is a small general-purpose asynchronous runtime.
//
// It provides four cooperating concurrency primitives:
//
//   - [Task], a single-value computation that is hot-started on a
//     background worker as soon as it is constructed, and awaited through
//     [Task.Result];
//   - [Sequence], a lazy, single-consumer stream with a pipeline of
//     combinators ([Sequence.Where], [Select], [Sequence.Chunk], …);
//   - [Channel], a bounded or unbounded multi-producer/multi-consumer
//     message pipe with blocking and non-blocking operations;
//   - [Scheduler], the fixed pool of worker goroutines every [Task] runs
//     on.
//
// [RingQueue] and [UnboundedQueue] are the lock-free FIFOs backing the
// bounded and unbounded [Channel] variants, respectively; they are usable
// on their own if a caller only needs a queue, not a full channel.
//
// # Hot Starting
//
// A Task is handed to its [Scheduler] the instant it is constructed ([Run],
// [RunOn]) and starts as soon as a worker picks it up, without waiting to
// be awaited.
// This differs from lazy futures: calling a task-returning function and
// awaiting its result later may observe a value computed well before the
// await itself ran.
//
// # Tasks vs. Channels
//
// A [Task] carries exactly one value (or error) from one producer to one
// consumer. A [Channel] carries any number of values between any number
// of producers and consumers, and can be closed to signal "no more
// values are coming." Use a Task when there is exactly one result; use a
// Channel when there is a stream, possibly from more than one source.
//
// # Error Propagation
//
// A panic inside a Task's body is recovered and turned into an ordinary
// error, surfaced by [Task.Result]. A panic inside a Sequence's body is not
// recovered: it propagates, as a panic, out of the consumer's iteration
// step that resumed the body.
// [WhenAll] never stops at the first failing task; it collects every
// failure and, if any occurred, fails with an [AggregateError] holding
// all of them.
package async
