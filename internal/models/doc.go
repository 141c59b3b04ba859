// Package models defines the core domain models for GroupPay.
//
// # Pipeline Models
//
// The receipt-to-split pipeline flows through these models:
//   - ParsedReceipt: output of the receipt parser (line items + tax + subtotal)
//   - LineItem: a merged, normalized line item from a scanned receipt
//   - Assignment: which participants own a line item (or the whole roster)
//   - SplitParameters: tax and tip inputs to the calculator
//   - SplitResult: per-participant shares, reconciled to the grand total
//
// # Application Models
//
// Persisted state built on top of the pipeline:
//   - Bill: a receipt plus its assignments, roster, and split parameters
//   - Group: a reusable participant roster that can own bills
//   - Settlement: a payment between group members to clear debts
//
// # Design Principles
//
//  1. **Plain data**: models are serializable structs with no behavior
//     beyond derivation helpers; all computation lives in the receipt and
//     calculator packages.
//  2. **Derived, never stored**: totals that can drift (item total, receipt
//     subtotal, tax percentage) are computed from their sources on demand.
//  3. **Minor units**: every amount is a money.Amount (integer cents) so
//     shares reconcile exactly.
//  4. **Avoid circular references**: relationships use ID strings, not
//     pointers.
package models
