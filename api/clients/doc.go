/*
Package clients provides a Go client for the offer API.

# Example Usage

	client := clients.NewOfferClient("http://127.0.0.1:8081", 60*time.Second)

	expiry := uint32(3600)
	offer, err := client.CreateOffer(ctx, &expiry)

	health, err := client.Health(ctx)
	if !health.Config.CertificatesLoaded {
	    // developer credentials are missing on the server
	}
*/
package clients
