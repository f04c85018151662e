// Package policy provides Open Policy Agent (OPA) gating for action
// dispatch.
//
// This package evaluates Rego policies against validated actions
// before they reach the document. It includes built-in policies for
// common governance requirements and supports custom policy loading.
//
// # Architecture
//
// The policy system consists of four main components:
//
//  1. Engine - Compiles and evaluates Rego policies
//  2. Loader - Loads policies from files, directories, and bundles
//  3. Types - Data structures for policies, violations, and decisions
//  4. Built-in Policies - Pre-defined policies for common requirements
//
// # Usage
//
// Creating a policy engine and wiring it into a session:
//
//	logger := zerolog.New(os.Stdout)
//	gate, err := policy.NewEngine(logger)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	report, err := session.Execute(ctx, batch, doc, engine.Options{
//	    Policy: gate,
//	})
//
// Actions the gate denies come back with a rejected outcome carrying
// the violated rule's message.
//
// Loading custom policies:
//
//	paths := []string{
//	    "/etc/sheetflow/policies",
//	    "/opt/policies/custom.rego",
//	}
//
//	err = gate.LoadPolicies(ctx, paths)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Built-in Policies
//
// The following policies are included by default:
//
//  1. unsafe-hyperlinks - Blocks script and local file URL schemes
//  2. destructive-actions - Blocks deletions (disabled by default)
//  3. protection-changes - Flags protection removal
//  4. bulk-row-changes - Warns on large row or column changes
//
// # Custom Policies
//
// Custom policies can be written in Rego and loaded from files. The
// input document exposes the action and the batch context:
//
//	package custom.policies.comments
//
//	import rego.v1
//
//	deny contains violation if {
//	    input.action.kind == "add_comment"
//	    contains(lower(input.action.parameters.text), "confidential")
//
//	    violation := {
//	        "message": "Comments must not contain confidential markers",
//	        "severity": "error",
//	    }
//	}
//
// # Severity Levels
//
// Violations have four severity levels:
//
//   - info: Informational messages
//   - warning: Issues that should be reviewed but don't block dispatch
//   - error: Issues that block dispatch
//   - critical: Severe issues that must never be dispatched
//
// Only error and critical violations deny an action; info and warning
// violations surface as decision warnings.
//
// # Performance
//
// Policies are compiled once and reused for multiple evaluations. The
// engine uses OPA's PreparedEvalQuery for optimal performance.
package policy
