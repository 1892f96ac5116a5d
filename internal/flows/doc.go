// Package flows contains the orchestration logic for login and token
// validation. Each flow receives its dependencies as a struct of function
// fields wired by the host engine, which keeps the ordering rules testable
// without Redis or a real identity store.
package flows
