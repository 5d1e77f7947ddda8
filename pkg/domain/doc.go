/*
Package domain contains the core domain models of the report flow.

It defines the configuration table (Catalog, Category, Subcategory), the
controller state (FlowState, Step), the persisted Session, the submitted
Report and the View a host renders. This package is kept pure and free of
external dependencies like I/O or persistence.

# Key Entities

  - Catalog: The validated, immutable table of report reasons.
  - FlowState: The step and selections owned by the step controller.
  - Session: One dialog instance, with the externally pushed submission Status.
  - View: A structural description of what the host should render for a step.
  - Report: The payload handed to the submit callback.
*/
package domain
