package http

import "github.com/spf13/cobra"

func NewHTTPCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "http",
		Short: "Serve the query API over HTTP",
		Long: `Serve read-only access to the BioMatrix store over HTTP.

Routes under /api/v1:
  GET /query?q=<query string>             records matching a query string
  GET /entities                           declared entities, relations and columns
  GET /patients/:id/history               a patient's exams and procedures by date
  GET /records/:entity/:key/:relation     records related to one record

Probes are served on /livez, /readyz and /startupz; /readyz fails while no
store is bound. Metrics are served on the configured metrics path when
observability is enabled.`,
	}

	cmd.AddCommand(NewStartCommand())

	return cmd
}
