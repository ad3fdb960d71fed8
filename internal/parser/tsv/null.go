package tsv

// DefaultNullValues are the cell texts read as null unless Options overrides
// them. The set follows the usual dataframe conventions, so a file that
// round-trips through common data tools keeps its nulls.
var DefaultNullValues = []string{
	"",
	"#N/A",
	"#N/A N/A",
	"#NA",
	"-1.#IND",
	"-1.#QNAN",
	"-NaN",
	"-nan",
	"1.#IND",
	"1.#QNAN",
	"<NA>",
	"N/A",
	"NA",
	"NULL",
	"NaN",
	"None",
	"n/a",
	"nan",
	"null",
}
