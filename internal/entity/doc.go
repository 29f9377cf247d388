// Package entity defines the generic Record type and the descriptors that
// turn each backoffice entity kind into data.
//
// A Descriptor carries everything kind-specific: the edit form schema, list
// columns, search and export fields, activity-log templates, a display-name
// rule and create-time defaults. The CRUD engine, the pages and the API only
// ever consult descriptors, so supporting a new kind means registering one.
//
// Record ids are canonical strings. CanonicalID folds the numeric and
// string forms that JSON sources produce into one representation, which
// keeps "3" and 3 equal without type coercion at comparison sites.
package entity
