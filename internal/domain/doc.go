// Package domain defines the core domain types for the hsclci converter.
//
// This package contains the entities that flow through the conversion
// pipeline: simulation streams extracted from HSC Chemistry result
// workbooks, the exchanges and datasets that make up a Brightway-style
// life cycle inventory, and the reference records (technosphere datasets
// and biosphere flows) that exchanges are linked against.
//
// # Core Types
//
// Stream represents one material or energy flow reported by the process
// simulation, keyed by the unit process that consumes or produces it.
//
// Exchange represents one input or output of an inventory dataset. An
// exchange is "linked" once its Input key identifies the dataset or
// elementary flow it draws from.
//
// Dataset represents one inventory activity: a unit process (or the
// global activity aggregating all unit processes) together with its
// exchange list.
//
// BiosphereFlow represents one elementary flow from the biosphere
// reference database, used to resolve biosphere exchanges.
//
// # Design Principles
//
// - Flat, short-lived records with no infrastructure concerns
// - No database or external dependencies
// - Meaningful constants for flow types and stream directions
package domain
