// Package ghtrending scrapes the GitHub trending listing.
//
// The scraper is read-only and stateless, each call depends solely on its
// input. Scraping is split into two steps that can be run apart:
//
//  1. Fetch: url -> request -> raw page (Client).
//  2. Extract: raw page -> goquery selectors -> records (Extract, Layout).
//
// Keeping them apart lets a page that was saved to disk be parsed again
// without touching the network, and lets the layout be swapped when the
// markup of the page changes.
package ghtrending
