// Package adjudication holds the review model: a table of records labelled by
// two independent annotators, a cursor over that table, and the append-only
// list of decisions an operator produces while walking it. Decisions can be
// exported as CSV or JSON at any time.
//
// A Session is owned by exactly one interactive user and is not safe for
// concurrent use.
package adjudication
