// Package fundcalc provides the economics engine of a venture-capital
// fund. It is designed to be deterministic and auditable: every monetary
// value and rate is an exact decimal, and every engine is a pure function
// of its inputs.
//
// The core functionalities include:
//   - XIRR Solver: internal rate of return for cash flows on irregular
//     dates, with Actual/365 day counting and a hybrid Newton/Brent/
//     bisection root-finding strategy.
//   - Fee Schedule Engine: periodic management fees over committed,
//     called, or fair-market-value bases, with rate step-downs.
//   - Waterfall Distribution Engine: tiered allocation of distribution
//     proceeds across return-of-capital, preferred return, GP catch-up,
//     and carried interest, including recycling and clawback.
//   - Reserve Allocation Engine: deterministic, MOIC-ranked assignment of
//     a follow-on reserve budget across portfolio companies, emitting an
//     immutable audit ledger.
//   - Data Persistence: encoding and decoding of cash flows, distribution
//     events, and reserve candidates to and from human-readable,
//     version-controllable formats (JSONL).
//
// Engines hold no state that survives a call, so they are safe to use
// concurrently on independent input data. This package serves as the
// foundational logic for the `fce` command-line tool.
package fundcalc
