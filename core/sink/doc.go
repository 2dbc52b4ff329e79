// Package sink delivers reconciliation results to their consumers.
//
// Every sink implements reconcile.Sink:
//   - LogSink writes a structured summary through zap.
//   - WriterSink encodes the full result as JSON or YAML to an io.Writer.
//   - ObjectSink archives the JSON report to object storage as
//     differences_<collection>_<YYYYMMDD_HHMMSS>.json.
//   - Multi fans a result out to several sinks in order.
package sink
