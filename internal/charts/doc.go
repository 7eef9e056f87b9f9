// Package charts renders the report's figures with gonum/plot: one time
// series line chart per indicator and the correlation heatmap. The output
// format (png, svg or pdf) follows the extension of the target path.
package charts
