// Package assets provides the embedded HTML shell template and CSS
// styles used by the report export stages.
package assets
